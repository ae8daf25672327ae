package dispatch

import "fmt"

// BridgeError wraps a failure from one of the three injected bridges with
// the kind of call that failed, so a host surfacing task failures to a
// user can distinguish "the model endpoint is unreachable" from "the MCP
// server rejected the call" without string-matching the underlying error.
type BridgeError struct {
	Bridge string // "chat" | "exec" | "mcp"
	Err    error
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("%s bridge: %v", e.Bridge, e.Err)
}

func (e *BridgeError) Unwrap() error { return e.Err }

// WrapChatError, WrapExecError, and WrapMcpError tag a bridge failure with
// its origin. A nil err passes through unchanged so callers can wrap
// unconditionally: `return WrapChatError(bridges.Chat(...))`-style call
// sites stay error-check-free until the final nil check.
func WrapChatError(err error) error { return wrapBridge("chat", err) }
func WrapExecError(err error) error { return wrapBridge("exec", err) }
func WrapMcpError(err error) error  { return wrapBridge("mcp", err) }

func wrapBridge(bridge string, err error) error {
	if err == nil {
		return nil
	}
	return &BridgeError{Bridge: bridge, Err: err}
}
