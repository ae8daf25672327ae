package taskset

import (
	"context"
	"sync"

	"github.com/codexcore/runtime/internal/async"
	"github.com/codexcore/runtime/internal/hooks"
	"github.com/codexcore/runtime/internal/logging"
)

// runSet drives every task in spec to completion and returns whether the
// set as a whole succeeded (the conjunction of every task's outcome).
// Sequential mode runs tasks one after another; parallel mode starts all
// of them concurrently with no ordering guarantee across their UI events.
func runSet(ctx context.Context, engine *hooks.Engine, resolver ModelResolver, bridges Bridges, sink EventSink, logger logging.Logger, sessionID, cwd string, spec TaskSetSpec) bool {
	sink.Emit(UIEvent{Kind: UIEventTaskSetStart, SetID: spec.SetID, SetMode: spec.Mode, Title: spec.Title})

	var ok bool
	switch spec.Mode {
	case ModeParallel:
		ok = runTasksParallel(ctx, engine, resolver, bridges, sink, logger, sessionID, cwd, spec)
	default:
		ok = runTasksSequential(ctx, engine, resolver, bridges, sink, sessionID, cwd, spec)
	}

	sink.Emit(UIEvent{Kind: UIEventTaskSetEnd, SetID: spec.SetID, SetMode: spec.Mode, Title: spec.Title})
	return ok
}

func runTasksSequential(ctx context.Context, engine *hooks.Engine, resolver ModelResolver, bridges Bridges, sink EventSink, sessionID, cwd string, spec TaskSetSpec) bool {
	ok := true
	for _, task := range spec.Tasks {
		outcome := runTask(ctx, engine, resolver, bridges, sink, sessionID, spec.SetID, cwd, task)
		ok = ok && outcome.OK
	}
	return ok
}

func runTasksParallel(ctx context.Context, engine *hooks.Engine, resolver ModelResolver, bridges Bridges, sink EventSink, logger logging.Logger, sessionID, cwd string, spec TaskSetSpec) bool {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok = true
	)
	for _, task := range spec.Tasks {
		task := task
		wg.Add(1)
		async.Go(logger, "taskset:"+spec.SetID+":"+task.ID, func() {
			defer wg.Done()
			outcome := runTask(ctx, engine, resolver, bridges, sink, sessionID, spec.SetID, cwd, task)
			mu.Lock()
			ok = ok && outcome.OK
			mu.Unlock()
		})
	}
	wg.Wait()
	return ok
}
