package main

import (
	"context"
	"fmt"

	"github.com/codexcore/runtime/internal/logging"
	"github.com/codexcore/runtime/internal/taskset"
)

// noopChatBridge and noopMcpBridge log the call they would have made and
// succeed without contacting anything. The chat and MCP client
// implementations are host-injected collaborators outside this runtime's
// scope; these defaults let `codexcore run` exercise a plan's
// orchestration (hooks, step sequencing, event stream) without one wired
// in.
func noopChatBridge(logger logging.Logger) taskset.ChatBridge {
	return func(ctx context.Context, modelName, baseURL, prompt string) error {
		logger.Info("chat bridge (noop): model=%s base_url=%s prompt=%q", modelName, baseURL, truncate(prompt, 120))
		return nil
	}
}

func noopMcpBridge(logger logging.Logger) taskset.McpBridge {
	return func(ctx context.Context, server, method string, payload any) (any, error) {
		logger.Info("mcp bridge (noop): server=%s method=%s", server, method)
		return nil, nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
