package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/codexcore/runtime/internal/coretypes"
	"github.com/codexcore/runtime/internal/hookerr"
	"github.com/codexcore/runtime/internal/logging"
)

// defaultRecursionLimit is used when the config does not specify one.
const defaultRecursionLimit = 3

// ModelResolver resolves a Prompt action's model target: an explicit
// profile name takes precedence over the role-routed "chat" target. The
// Hook Engine only selects the target; sending the prompt is deferred to
// the host via the chat bridge.
type ModelResolver interface {
	Profile(name string) (coretypes.ModelTarget, bool)
	PickModel(role coretypes.ModelRole) coretypes.ModelTarget
}

// PluginHandler implements a named Plugin action.
type PluginHandler func(ctx context.Context, ev Event, cfg any) error

// Engine matches events against loaded rules and runs their actions,
// enforcing a recursion limit and registered Plugin handlers.
type Engine struct {
	logger         logging.Logger
	resolver       ModelResolver
	recursionLimit int

	mu    sync.Mutex
	rules []Rule

	pluginsMu sync.RWMutex
	plugins   map[string]PluginHandler

	depthMu sync.Mutex
	depth   int
}

// NewEngine constructs an Engine with no rules loaded. recursionLimit <= 0
// uses the default of 3.
func NewEngine(recursionLimit int, resolver ModelResolver, logger logging.Logger) *Engine {
	if recursionLimit <= 0 {
		recursionLimit = defaultRecursionLimit
	}
	e := &Engine{
		logger:         logging.OrNop(logger),
		resolver:       resolver,
		recursionLimit: recursionLimit,
		plugins:        make(map[string]PluginHandler),
	}
	e.RegisterPlugin("audit_log", auditLogPlugin)
	return e
}

// LoadRules replaces the active rule set. Rules are immutable once loaded;
// callers reconstruct the Engine (or call LoadRules again) to pick up
// edited rule files, there is no incremental patching.
func (e *Engine) LoadRules(rules []Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = rules
}

// RegisterPlugin registers a named Plugin handler. A handler registered
// under a name already in use replaces the previous one.
func (e *Engine) RegisterPlugin(name string, handler PluginHandler) {
	e.pluginsMu.Lock()
	defer e.pluginsMu.Unlock()
	e.plugins[name] = handler
}

// Emit runs every enabled rule whose When list matches ev's tag, in load
// order, and returns the resulting Decision. Depth is tracked under a short
// critical section and decremented on every exit path, including panics
// recovered elsewhere up the call stack (the counter itself cannot leak
// because the decrement is deferred here, not in the caller).
func (e *Engine) Emit(ctx context.Context, ev Event) Decision {
	if !e.enter() {
		return Continue
	}
	defer e.exit()

	e.mu.Lock()
	rules := make([]Rule, len(e.rules))
	copy(rules, e.rules)
	e.mu.Unlock()

	tag := ev.Tag()
	envSet := map[string]string{}
	var envRemove []string
	sawEnvMutation := false

	for _, rule := range rules {
		if !rule.Matches(tag) {
			continue
		}
		for _, action := range rule.Actions {
			decision, err := e.runAction(ctx, ev, rule, action)
			if err != nil {
				if rule.DenyOnFail {
					return Deny(err.Error())
				}
				e.logger.Warn("hook action error (swallowed): %v", err)
				continue
			}
			if decision.Kind == DecisionModifyEnv {
				sawEnvMutation = true
				for k, v := range decision.Set {
					envSet[k] = v
				}
				envRemove = append(envRemove, decision.Remove...)
			}
		}
	}

	if sawEnvMutation {
		return Decision{Kind: DecisionModifyEnv, Set: envSet, Remove: envRemove}
	}
	return Continue
}

func (e *Engine) enter() bool {
	e.depthMu.Lock()
	defer e.depthMu.Unlock()
	if e.depth >= e.recursionLimit {
		return false
	}
	e.depth++
	return true
}

func (e *Engine) exit() {
	e.depthMu.Lock()
	defer e.depthMu.Unlock()
	if e.depth > 0 {
		e.depth--
	}
}

// runAction executes a single HookAction and returns its Decision. Every
// action kind returns Continue on success: Exec and Prompt carry no
// decision, and a PluginHandler reports only an error, so no action
// produces a ModifyEnv decision for Emit to accumulate.
func (e *Engine) runAction(ctx context.Context, ev Event, rule Rule, action Action) (Decision, error) {
	switch action.Kind {
	case ActionExec:
		return Continue, e.runExec(ctx, ev, action)
	case ActionPrompt:
		return Continue, e.resolvePrompt(action)
	case ActionPlugin:
		return e.runPlugin(ctx, ev, rule, action)
	default:
		return Continue, hookerr.NewActionError(rule.Name, string(action.Kind), fmt.Errorf("unknown action kind"))
	}
}

func (e *Engine) runExec(ctx context.Context, ev Event, action Action) error {
	cmd := exec.CommandContext(ctx, action.Cmd, action.Args...)
	cmd.Dir = ev.CWD
	if len(ev.Env) > 0 {
		env := os.Environ()
		for k, v := range ev.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}
	if err := cmd.Run(); err != nil {
		return hookerr.NewActionError("", "exec", err)
	}
	return nil
}

// resolvePrompt selects the model target for a Prompt action. Sending the
// prompt itself is the host's responsibility via the chat bridge.
func (e *Engine) resolvePrompt(action Action) error {
	if e.resolver == nil {
		return nil
	}
	if action.ModelProfile != "" {
		if _, ok := e.resolver.Profile(action.ModelProfile); !ok {
			return fmt.Errorf("prompt action: unknown model profile %q", action.ModelProfile)
		}
		return nil
	}
	target := e.resolver.PickModel(coretypes.RoleChat)
	if target.IsAbsent() {
		return fmt.Errorf("prompt action: no chat model configured")
	}
	return nil
}

func (e *Engine) runPlugin(ctx context.Context, ev Event, rule Rule, action Action) (Decision, error) {
	e.pluginsMu.RLock()
	handler, ok := e.plugins[action.Handler]
	e.pluginsMu.RUnlock()
	if !ok {
		return Continue, hookerr.NewActionError(rule.Name, "plugin", fmt.Errorf("unknown handler %q", action.Handler))
	}
	if err := handler(ctx, ev, action.Config); err != nil {
		return Continue, hookerr.NewActionError(rule.Name, "plugin:"+action.Handler, err)
	}
	return Continue, nil
}

// auditLogPlugin is the built-in "audit_log" Plugin handler: it appends
// "<rfc3339> <event>" to <cwd>/.codex/audit.log.
func auditLogPlugin(ctx context.Context, ev Event, _ any) error {
	return appendAuditLog(ev.CWD, time.Now().UTC().Format(time.RFC3339), ev.Tag())
}
