package taskset

import (
	"context"
	"fmt"

	"github.com/codexcore/runtime/internal/coretypes"
	"github.com/codexcore/runtime/internal/hooks"
)

// ModelResolver resolves a Chat step's model target: the narrow view of
// the Config Store the scheduler needs, mirroring hooks.ModelResolver.
type ModelResolver interface {
	Profile(name string) (coretypes.ModelTarget, bool)
	PickModel(role coretypes.ModelRole) coretypes.ModelTarget
}

// stepResult is what runStep reports back to its caller: whether the step
// succeeded, an error message when it did not, and whether a pre-event
// veto ended the enclosing task outright.
type stepResult struct {
	ok     bool
	errMsg string
	vetoed bool
}

// stepRunner bundles the collaborators every step executor needs, plus
// the task's own model profile (the fallback below an explicit
// step.ModelProfile and the active SubAgent profile).
type stepRunner struct {
	engine      *hooks.Engine
	hctx        *taskHookContext
	resolver    ModelResolver
	bridges     Bridges
	profiles    *profileStack
	taskProfile string

	sink   EventSink
	setID  string
	taskID string
}

// runStep executes a single TaskStep per its per-step protocol: pre-event,
// bridge invocation, post-event. A Deny pre-event decision skips the
// bridge call entirely and is reported as vetoed so the caller ends the
// task immediately.
func (r *stepRunner) runStep(ctx context.Context, step TaskStep) stepResult {
	switch step.Kind {
	case StepChat:
		return r.runChatStep(ctx, step)
	case StepExec:
		return r.runExecStep(ctx, step.Cmd, step.Args)
	case StepGit:
		return r.runExecStep(ctx, "git", step.Args)
	case StepMcpCall:
		return r.runMcpStep(ctx, step)
	case StepSubAgent:
		return r.runSubAgentStep(ctx, step)
	default:
		return stepResult{errMsg: fmt.Sprintf("unknown step kind %q", step.Kind)}
	}
}

// resolveChatTarget tries stepProfile, then the active SubAgent profile,
// then the task's own profile, in priority order; an unrecognized profile
// at any level falls through to the next rather than aborting the step.
// Only the final role-routed default can fail the step outright.
func (r *stepRunner) resolveChatTarget(stepProfile string) (coretypes.ModelTarget, error) {
	if r.resolver == nil {
		return coretypes.ModelTarget{}, fmt.Errorf("chat step: no model resolver configured")
	}
	for _, profile := range []string{stepProfile, r.profiles.active(), r.taskProfile} {
		if profile == "" {
			continue
		}
		if t, ok := r.resolver.Profile(profile); ok {
			return t, nil
		}
	}
	target := r.resolver.PickModel(coretypes.RoleChat)
	if target.IsAbsent() {
		return coretypes.ModelTarget{}, fmt.Errorf("chat step: no chat model configured")
	}
	return target, nil
}

func (r *stepRunner) runChatStep(ctx context.Context, step TaskStep) stepResult {
	pre := r.hctx.event(hooks.EventPreToolUse)
	pre.Tool = "chat"
	decision := r.engine.Emit(ctx, pre)
	if decision.IsDeny() {
		return stepResult{vetoed: true, errMsg: decision.Reason}
	}
	r.hctx.apply(decision)

	target, err := r.resolveChatTarget(step.ModelProfile)
	if err != nil {
		return stepResult{errMsg: err.Error()}
	}

	bridgeErr := r.bridges.Chat(ctx, target.Name, target.BaseURL, step.Prompt)

	post := r.hctx.event(hooks.EventPostToolUse)
	post.Tool = "chat"
	r.hctx.apply(r.engine.Emit(ctx, post))

	if bridgeErr != nil {
		return stepResult{errMsg: bridgeErr.Error()}
	}
	r.emitProgress(fmt.Sprintf("chat %s", target.Name))
	return stepResult{ok: true}
}

func (r *stepRunner) runExecStep(ctx context.Context, cmd string, args []string) stepResult {
	pre := r.hctx.event(hooks.EventPreExec)
	pre.Cmd, pre.Argv = cmd, args
	decision := r.engine.Emit(ctx, pre)
	if decision.IsDeny() {
		return stepResult{vetoed: true, errMsg: decision.Reason}
	}
	r.hctx.apply(decision)

	result, err := r.bridges.Exec(ctx, cmd, args)
	if err != nil {
		return stepResult{errMsg: err.Error()}
	}

	post := r.hctx.event(hooks.EventPostExec)
	post.Cmd, post.Argv, post.Status = cmd, args, result.ExitCode
	r.hctx.apply(r.engine.Emit(ctx, post))

	r.emitProgress(fmt.Sprintf("exec %s -> %d", cmd, result.ExitCode))

	if result.ExitCode != 0 {
		return stepResult{errMsg: fmt.Sprintf("exit %d: %s", result.ExitCode, result.OutputPreview)}
	}
	return stepResult{ok: true}
}

func (r *stepRunner) runMcpStep(ctx context.Context, step TaskStep) stepResult {
	pre := r.hctx.event(hooks.EventPreMCP)
	pre.Server, pre.Method, pre.Payload = step.Server, step.Method, step.Payload
	decision := r.engine.Emit(ctx, pre)
	if decision.IsDeny() {
		return stepResult{vetoed: true, errMsg: decision.Reason}
	}
	r.hctx.apply(decision)

	response, err := r.bridges.Mcp(ctx, step.Server, step.Method, step.Payload)
	if err != nil {
		return stepResult{errMsg: err.Error()}
	}

	post := r.hctx.event(hooks.EventPostMCP)
	post.Server, post.Method, post.Payload = step.Server, step.Method, response
	r.hctx.apply(r.engine.Emit(ctx, post))

	r.emitProgress(fmt.Sprintf("mcp %s.%s", step.Server, step.Method))
	return stepResult{ok: true}
}

// emitProgress reports a TaskProgress UI event for the active task, or does
// nothing if the runner was not given a sink (e.g. a caller that only cares
// about the step's pass/fail outcome).
func (r *stepRunner) emitProgress(msg string) {
	if r.sink == nil {
		return
	}
	r.sink.Emit(UIEvent{Kind: UIEventTaskProgress, SetID: r.setID, TaskID: r.taskID, ProgressMsg: msg})
}

// runSubAgentStep pushes step.Agent as the active model profile, runs the
// nested steps in sequence, and pops it on return via defer — even when a
// nested step fails. SubAgent carries no pre/post hook events of its own;
// the nested steps emit their own.
func (r *stepRunner) runSubAgentStep(ctx context.Context, step TaskStep) stepResult {
	restore := r.profiles.push(step.Agent)
	defer restore()

	ok := true
	var firstErr string
	for _, nested := range step.Steps {
		res := r.runStep(ctx, nested)
		if res.vetoed {
			return stepResult{vetoed: true, errMsg: res.errMsg}
		}
		if !res.ok {
			ok = false
			if firstErr == "" {
				firstErr = res.errMsg
			}
		}
	}
	return stepResult{ok: ok, errMsg: firstErr}
}
