package taskset

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexcore/runtime/internal/coretypes"
	"github.com/codexcore/runtime/internal/hooks"
)

type recordingSink struct {
	mu     sync.Mutex
	events []UIEvent
}

func (r *recordingSink) Emit(ev UIEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingSink) snapshot() []UIEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]UIEvent, len(r.events))
	copy(out, r.events)
	return out
}

type stubResolver struct {
	profiles map[string]coretypes.ModelTarget
	defaults map[coretypes.ModelRole]coretypes.ModelTarget
}

func (s stubResolver) Profile(name string) (coretypes.ModelTarget, bool) {
	t, ok := s.profiles[name]
	return t, ok
}

func (s stubResolver) PickModel(role coretypes.ModelRole) coretypes.ModelTarget {
	return s.defaults[role]
}

func newResolver() stubResolver {
	return stubResolver{
		profiles: map[string]coretypes.ModelTarget{},
		defaults: map[coretypes.ModelRole]coretypes.ModelTarget{
			coretypes.RoleChat:       {Name: "chat-model"},
			coretypes.RoleTaskStatus: {Name: "status-model"},
		},
	}
}

func execStepPlan(sessionID string, exitCodes ...int) TaskSetPlan {
	var tasks []TaskSpec
	for i, code := range exitCodes {
		tasks = append(tasks, TaskSpec{
			ID:   fmt.Sprintf("t%d", i+1),
			Name: fmt.Sprintf("task-%d", i+1),
			Steps: []TaskStep{
				{Kind: StepExec, Cmd: "true", Args: []string{fmt.Sprintf("%d", code)}},
			},
		})
	}
	return TaskSetPlan{
		SessionID: sessionID,
		Sets: []TaskSetSpec{
			{SetID: "set-1", Title: "only set", Mode: ModeSequential, Tasks: tasks},
		},
	}
}

// execBridgeByExitCode decodes the intended exit code back out of the args
// a test plan encodes it with, so bridges stay pure functions of their
// inputs rather than closing over shared test state.
func execBridgeByExitCode() func(ctx context.Context, cmd string, args []string) (ExecResult, error) {
	return func(ctx context.Context, cmd string, args []string) (ExecResult, error) {
		code := 0
		if len(args) > 0 {
			fmt.Sscanf(args[0], "%d", &code)
		}
		return ExecResult{ExitCode: code, OutputPreview: "ran"}, nil
	}
}

func newTestBridges() Bridges {
	return Bridges{
		Chat: func(ctx context.Context, modelName, baseURL, prompt string) error { return nil },
		Exec: execBridgeByExitCode(),
		Mcp:  func(ctx context.Context, server, method string, payload any) (any, error) { return nil, nil },
	}
}

// TestSequentialHappyPath mirrors the sequential happy-path scenario: two
// exec tasks that both succeed, plus a second one-task set, and checks that
// each set is bracketed by exactly one TaskSetStart/TaskSetEnd pair.
func TestSequentialHappyPath(t *testing.T) {
	plan := execStepPlan("sess-1", 0, 0)
	plan.Sets = append(plan.Sets, TaskSetSpec{SetID: "set-2", Title: "second", Mode: ModeSequential, Tasks: []TaskSpec{
		{ID: "t3", Name: "task-3", Steps: []TaskStep{{Kind: StepExec, Cmd: "true", Args: []string{"0"}}}},
	}})

	engine := hooks.NewEngine(3, newResolver(), nil)
	sink := &recordingSink{}
	scheduler := New(engine, newResolver(), newTestBridges(), AutoConfirmerForTest, "/tmp", nil)

	state, err := scheduler.Run(context.Background(), plan, sink)
	require.NoError(t, err)
	assert.Equal(t, PlanDone, state)

	events := sink.snapshot()
	require.NotEmpty(t, events)
	assert.Equal(t, UIEventTaskSetStart, events[0].Kind)
	assert.Equal(t, UIEventTaskSetEnd, events[len(events)-1].Kind)

	// invariant 1: exactly one matched TaskSetStart/TaskSetEnd pair per set
	setStarts, setEnds := 0, 0
	for _, ev := range events {
		if ev.Kind == UIEventTaskSetStart {
			setStarts++
		}
		if ev.Kind == UIEventTaskSetEnd {
			setEnds++
		}
	}
	assert.Equal(t, 2, setStarts)
	assert.Equal(t, 2, setEnds)
}

// AutoConfirmerForTest always continues; kept local to avoid a dependency
// on the dispatch package from taskset's own tests.
func AutoConfirmerForTest(ctx context.Context, setTitle, summary string) (bool, error) {
	return true, nil
}

// TestExecFailureStillRunsLaterTasks mirrors the exec-failure scenario:
// t1 fails, t2 still runs, and the set as a whole is not ok.
func TestExecFailureStillRunsLaterTasks(t *testing.T) {
	plan := execStepPlan("sess-1", 1, 0)

	engine := hooks.NewEngine(3, newResolver(), nil)
	sink := &recordingSink{}
	scheduler := New(engine, newResolver(), newTestBridges(), nil, "/tmp", nil)

	state, err := scheduler.Run(context.Background(), plan, sink)
	require.NoError(t, err)
	assert.Equal(t, PlanDone, state)

	events := sink.snapshot()
	var t1End, t2Start, t2End bool
	for _, ev := range events {
		if ev.Kind == UIEventTaskEnd && ev.TaskID == "t1" {
			t1End = true
			assert.False(t, ev.Outcome.OK)
		}
		if ev.Kind == UIEventTaskStart && ev.TaskID == "t2" {
			t2Start = true
		}
		if ev.Kind == UIEventTaskEnd && ev.TaskID == "t2" {
			t2End = true
			assert.True(t, ev.Outcome.OK)
		}
	}
	assert.True(t, t1End && t2Start && t2End, "t2 must still run after t1 fails")
}

// TestHookVetoSkipsBridgeCall mirrors the hook-veto scenario: a deny-plugin
// on pre_exec means the exec bridge is never invoked and the task fails
// with the deny reason recorded.
func TestHookVetoSkipsBridgeCall(t *testing.T) {
	engine := hooks.NewEngine(3, newResolver(), nil)
	engine.RegisterPlugin("deny", func(ctx context.Context, ev hooks.Event, cfg any) error {
		return fmt.Errorf("not allowed")
	})
	engine.LoadRules([]hooks.Rule{
		{
			Name: "veto", Enabled: true, When: []string{"pre_exec"}, DenyOnFail: true,
			Actions: []hooks.Action{{Kind: hooks.ActionPlugin, Handler: "deny"}},
		},
	})

	execCalled := false
	bridges := newTestBridges()
	bridges.Exec = func(ctx context.Context, cmd string, args []string) (ExecResult, error) {
		execCalled = true
		return ExecResult{}, nil
	}

	plan := execStepPlan("sess-1", 0)
	sink := &recordingSink{}
	scheduler := New(engine, newResolver(), bridges, nil, "/tmp", nil)

	_, err := scheduler.Run(context.Background(), plan, sink)
	require.NoError(t, err)
	assert.False(t, execCalled, "the exec bridge must never be called once pre_exec is vetoed")

	events := sink.snapshot()
	for _, ev := range events {
		if ev.Kind == UIEventTaskEnd {
			assert.False(t, ev.Outcome.OK)
			assert.Contains(t, ev.Outcome.Error, "not allowed")
		}
	}
}

// TestRecursionCapStopsReentrantExecActions mirrors the recursion-cap
// scenario: a hook rule whose action itself re-enters the engine stops
// running actions once recursion_limit invocations have been reached.
func TestRecursionCapStopsReentrantExecActions(t *testing.T) {
	engine := hooks.NewEngine(3, newResolver(), nil)
	invocations := 0
	engine.RegisterPlugin("reentrant", func(ctx context.Context, ev hooks.Event, cfg any) error {
		invocations++
		engine.Emit(ctx, hooks.Event{Kind: hooks.EventPreExec})
		return nil
	})
	engine.LoadRules([]hooks.Rule{
		{Name: "loop", Enabled: true, When: []string{"pre_exec"}, Actions: []hooks.Action{{Kind: hooks.ActionPlugin, Handler: "reentrant"}}},
	})

	engine.Emit(context.Background(), hooks.Event{Kind: hooks.EventPreExec})
	assert.Equal(t, 3, invocations, "recursion_limit=3 bounds total nested invocations")
}

func TestConfigLayeringPickModelScenario(t *testing.T) {
	// S5: system sets the default; user and workspace both set an
	// override for "compact", workspace wins (covered end-to-end in the
	// config package; here only the test stub's role-routed PickModel
	// lookups are checked, with no scheduler involved).
	resolver := stubResolver{
		profiles: map[string]coretypes.ModelTarget{},
		defaults: map[coretypes.ModelRole]coretypes.ModelTarget{
			coretypes.RoleChat:    {Name: "A"},
			coretypes.RoleCompact: {Name: "C"},
		},
	}
	assert.Equal(t, "C", resolver.PickModel(coretypes.RoleCompact).Name)
	assert.Equal(t, "A", resolver.PickModel(coretypes.RoleChat).Name)
}

func TestAwaitConfirmationDeclineCancelsPlan(t *testing.T) {
	plan := TaskSetPlan{
		SessionID: "sess-1",
		Sets: []TaskSetSpec{
			{SetID: "set-1", Title: "first", Mode: ModeSequential, Tasks: []TaskSpec{
				{ID: "t1", Name: "t1", Steps: []TaskStep{{Kind: StepExec, Cmd: "true", Args: []string{"0"}}}},
			}},
			{SetID: "set-2", Title: "second", Mode: ModeSequential, Tasks: []TaskSpec{
				{ID: "t2", Name: "t2", Steps: []TaskStep{{Kind: StepExec, Cmd: "true", Args: []string{"0"}}}},
			}},
		},
	}

	engine := hooks.NewEngine(3, newResolver(), nil)
	sink := &recordingSink{}
	decline := func(ctx context.Context, setTitle, summary string) (bool, error) { return false, nil }
	scheduler := New(engine, newResolver(), newTestBridges(), decline, "/tmp", nil)

	state, err := scheduler.Run(context.Background(), plan, sink)
	require.NoError(t, err)
	assert.Equal(t, PlanCancelled, state)

	for _, ev := range sink.snapshot() {
		assert.NotEqual(t, "set-2", ev.SetID, "no events from set-2 should be emitted once confirmation is declined")
	}
}

func TestExecStepEmitsTaskProgressOnSuccess(t *testing.T) {
	plan := execStepPlan("sess-1", 0)

	engine := hooks.NewEngine(3, newResolver(), nil)
	sink := &recordingSink{}
	scheduler := New(engine, newResolver(), newTestBridges(), nil, "/tmp", nil)

	_, err := scheduler.Run(context.Background(), plan, sink)
	require.NoError(t, err)

	var progressMsgs []string
	for _, ev := range sink.snapshot() {
		if ev.Kind == UIEventTaskProgress {
			progressMsgs = append(progressMsgs, ev.ProgressMsg)
		}
	}
	assert.Contains(t, progressMsgs, "exec true -> 0")
}

func TestHookVetoedStepEmitsNoTaskProgress(t *testing.T) {
	engine := hooks.NewEngine(3, newResolver(), nil)
	engine.RegisterPlugin("deny", func(ctx context.Context, ev hooks.Event, cfg any) error {
		return fmt.Errorf("not allowed")
	})
	engine.LoadRules([]hooks.Rule{
		{Name: "veto", Enabled: true, When: []string{"pre_exec"}, DenyOnFail: true, Actions: []hooks.Action{{Kind: hooks.ActionPlugin, Handler: "deny"}}},
	})

	plan := execStepPlan("sess-1", 0)
	sink := &recordingSink{}
	scheduler := New(engine, newResolver(), newTestBridges(), nil, "/tmp", nil)

	_, err := scheduler.Run(context.Background(), plan, sink)
	require.NoError(t, err)

	for _, ev := range sink.snapshot() {
		assert.NotEqual(t, UIEventTaskProgress, ev.Kind, "a vetoed step must never report progress")
	}
}

// TestSummaryChatRunsAfterTheFinalSetToo mirrors the inter-set handshake:
// the task_status summary chat call follows every TaskSetEnd, including the
// plan's last set — only the confirmation wait is skipped there.
func TestSummaryChatRunsAfterTheFinalSetToo(t *testing.T) {
	plan := execStepPlan("sess-1", 0) // a single set: it is both first and last

	var chatCalls []string
	bridges := newTestBridges()
	bridges.Chat = func(ctx context.Context, modelName, baseURL, prompt string) error {
		chatCalls = append(chatCalls, modelName)
		return nil
	}

	engine := hooks.NewEngine(3, newResolver(), nil)
	sink := &recordingSink{}
	scheduler := New(engine, newResolver(), bridges, nil, "/tmp", nil)

	state, err := scheduler.Run(context.Background(), plan, sink)
	require.NoError(t, err)
	assert.Equal(t, PlanDone, state)
	assert.Equal(t, []string{"status-model"}, chatCalls, "the summary chat call must still fire after the only/last set")
}

func TestChatStepFallsBackPastUnrecognizedProfileToDefault(t *testing.T) {
	plan := TaskSetPlan{
		SessionID: "sess-1",
		Sets: []TaskSetSpec{{
			SetID: "set-1", Title: "t", Mode: ModeSequential,
			Tasks: []TaskSpec{{
				ID: "t1", Name: "t1",
				Steps: []TaskStep{{Kind: StepChat, ModelProfile: "ghost", Prompt: "hi"}},
			}},
		}},
	}

	var seenModel string
	bridges := newTestBridges()
	bridges.Chat = func(ctx context.Context, modelName, baseURL, prompt string) error {
		// Only the chat step's own call; the set summary call that follows
		// uses the task_status model.
		if prompt == "hi" {
			seenModel = modelName
		}
		return nil
	}

	engine := hooks.NewEngine(3, newResolver(), nil)
	sink := &recordingSink{}
	scheduler := New(engine, newResolver(), bridges, nil, "/tmp", nil)

	_, err := scheduler.Run(context.Background(), plan, sink)
	require.NoError(t, err)
	assert.Equal(t, "chat-model", seenModel, "an unrecognized profile must fall through to the role-routed default, not error out")
}

func TestSubAgentProfileRestoredEvenOnFailure(t *testing.T) {
	engine := hooks.NewEngine(3, newResolver(), nil)
	resolver := stubResolver{
		profiles: map[string]coretypes.ModelTarget{"reviewer": {Name: "R"}},
		defaults: map[coretypes.ModelRole]coretypes.ModelTarget{coretypes.RoleChat: {Name: "A"}},
	}

	var seenProfiles []string
	bridges := newTestBridges()
	bridges.Chat = func(ctx context.Context, modelName, baseURL, prompt string) error {
		seenProfiles = append(seenProfiles, modelName)
		if modelName == "R" {
			return fmt.Errorf("sub-agent chat failed")
		}
		return nil
	}

	plan := TaskSetPlan{
		SessionID: "sess-1",
		Sets: []TaskSetSpec{{
			SetID: "set-1", Title: "t", Mode: ModeSequential,
			Tasks: []TaskSpec{{
				ID: "t1", Name: "t1",
				Steps: []TaskStep{
					{Kind: StepSubAgent, Agent: "reviewer", Steps: []TaskStep{
						{Kind: StepChat, Prompt: "review this"},
					}},
					{Kind: StepChat, Prompt: "back to default"},
				},
			}},
		}},
	}

	sink := &recordingSink{}
	scheduler := New(engine, resolver, bridges, nil, "/tmp", nil)
	_, err := scheduler.Run(context.Background(), plan, sink)
	require.NoError(t, err)

	require.Len(t, seenProfiles, 2)
	assert.Equal(t, "R", seenProfiles[0])
	assert.Equal(t, "A", seenProfiles[1], "the profile must revert to the task default after the sub-agent step, even though it failed")
}
