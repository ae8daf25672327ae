package taskset

import (
	"context"
	"time"

	"github.com/codexcore/runtime/internal/hooks"
)

// runTask executes every step of spec in order, aggregating success as a
// conjunction across steps. A Deny veto ends the task immediately with its
// reason recorded; any other step failure still lets subsequent steps
// run, matching Exec's "non-zero exit doesn't stop the task" rule.
func runTask(ctx context.Context, engine *hooks.Engine, resolver ModelResolver, bridges Bridges, sink EventSink, sessionID, setID, cwd string, spec TaskSpec) TaskOutcome {
	sink.Emit(UIEvent{Kind: UIEventTaskStart, SetID: setID, TaskID: spec.ID, TaskName: spec.Name})

	start := time.Now()
	hctx := &taskHookContext{cwd: cwd, sessionID: sessionID, setID: setID, taskID: spec.ID}
	runner := &stepRunner{
		engine:      engine,
		hctx:        hctx,
		resolver:    resolver,
		bridges:     bridges,
		profiles:    &profileStack{},
		taskProfile: spec.ModelProfile,
		sink:        sink,
		setID:       setID,
		taskID:      spec.ID,
	}

	ok := true
	var errMsg string
	for _, step := range spec.Steps {
		res := runner.runStep(ctx, step)
		if res.vetoed {
			ok, errMsg = false, res.errMsg
			break
		}
		if !res.ok {
			ok = false
			if errMsg == "" {
				errMsg = res.errMsg
			}
		}
	}

	outcome := TaskOutcome{OK: ok, Error: errMsg, Duration: time.Since(start)}
	sink.Emit(UIEvent{Kind: UIEventTaskEnd, SetID: setID, TaskID: spec.ID, TaskName: spec.Name, Outcome: outcome})
	return outcome
}
