package taskset

import "github.com/codexcore/runtime/internal/hooks"

// taskHookContext accumulates ModifyEnv decisions across a single task's
// steps: the scope a hook's env mutation applies to is exactly this task,
// never the whole plan or the shared config.
type taskHookContext struct {
	cwd       string
	sessionID string
	setID     string
	taskID    string
	env       map[string]string
}

func (h *taskHookContext) event(kind hooks.EventKind) hooks.Event {
	return hooks.Event{
		Kind:      kind,
		CWD:       h.cwd,
		Env:       h.env,
		SessionID: h.sessionID,
		SetID:     h.setID,
		TaskID:    h.taskID,
	}
}

// apply merges a ModifyEnv decision into the task-scoped overlay. Other
// decision kinds are a no-op here; Deny is handled by the caller.
func (h *taskHookContext) apply(d hooks.Decision) {
	if d.Kind != hooks.DecisionModifyEnv {
		return
	}
	if h.env == nil {
		h.env = make(map[string]string, len(d.Set))
	}
	for k, v := range d.Set {
		h.env[k] = v
	}
	for _, k := range d.Remove {
		delete(h.env, k)
	}
}
