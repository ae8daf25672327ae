package taskset

import (
	"context"
	"fmt"

	"github.com/codexcore/runtime/internal/coretypes"
	"github.com/codexcore/runtime/internal/hooks"
	"github.com/codexcore/runtime/internal/logging"
)

// PlanState names a point in a plan run's lifecycle.
type PlanState string

const (
	PlanIdle                 PlanState = "idle"
	PlanRunning              PlanState = "running"
	PlanSetStarting          PlanState = "set_starting"
	PlanSetExecuting         PlanState = "set_executing"
	PlanSetSummarizing       PlanState = "set_summarizing"
	PlanAwaitingConfirmation PlanState = "awaiting_confirmation"
	PlanSetCompleted         PlanState = "set_completed"
	PlanDone                 PlanState = "plan_done"
	PlanCancelled            PlanState = "plan_cancelled"
)

// Confirmer is the cancellable "continue / refine" wait interposed between
// sets. A false cont (with a nil error) or a non-nil error both end the
// plan cleanly with no further events; ctx cancellation is the expected
// way a host cancels an in-flight wait.
type Confirmer func(ctx context.Context, setTitle, summaryPrompt string) (cont bool, err error)

// Scheduler drives TaskSetPlans to completion.
type Scheduler struct {
	engine    *hooks.Engine
	resolver  ModelResolver
	bridges   Bridges
	confirmer Confirmer
	logger    logging.Logger
	cwd       string

	state PlanState
}

// New constructs a Scheduler. confirmer may be nil, in which case every
// set's summary chat call is followed immediately by the next set with no
// confirmation wait — useful for tests and non-interactive single-set plans.
func New(engine *hooks.Engine, resolver ModelResolver, bridges Bridges, confirmer Confirmer, cwd string, logger logging.Logger) *Scheduler {
	return &Scheduler{
		engine:    engine,
		resolver:  resolver,
		bridges:   bridges,
		confirmer: confirmer,
		logger:    logging.OrNop(logger),
		cwd:       cwd,
		state:     PlanIdle,
	}
}

// State returns the scheduler's current lifecycle state.
func (s *Scheduler) State() PlanState { return s.state }

// Run drives plan to completion against sink, returning the terminal
// state: PlanDone on normal completion, PlanCancelled if a confirmation
// wait was cancelled or declined.
func (s *Scheduler) Run(ctx context.Context, plan TaskSetPlan, sink EventSink) (PlanState, error) {
	s.state = PlanRunning

	for i, set := range plan.Sets {
		s.state = PlanSetStarting
		s.state = PlanSetExecuting
		ok := runSet(ctx, s.engine, s.resolver, s.bridges, sink, s.logger, plan.SessionID, s.cwd, set)
		s.state = PlanSetCompleted
		s.logger.Info("taskset: set %q completed ok=%v", set.SetID, ok)

		s.state = PlanSetSummarizing
		if err := s.summarizeSet(ctx, set); err != nil {
			s.logger.Warn("taskset: set %q summarization failed: %v", set.SetID, err)
		}

		last := i == len(plan.Sets)-1
		if last {
			continue
		}

		s.state = PlanAwaitingConfirmation
		cont, err := s.awaitConfirmation(ctx, set)
		if err != nil || !cont {
			s.state = PlanCancelled
			return s.state, err
		}
	}

	s.state = PlanDone
	return s.state, nil
}

func (s *Scheduler) summarizeSet(ctx context.Context, set TaskSetSpec) error {
	target := s.resolver.PickModel(coretypes.RoleTaskStatus)
	if target.IsAbsent() {
		return fmt.Errorf("no task_status model configured")
	}
	prompt := summaryPrompt(set.Title)
	return s.bridges.Chat(ctx, target.Name, target.BaseURL, prompt)
}

func (s *Scheduler) awaitConfirmation(ctx context.Context, set TaskSetSpec) (bool, error) {
	if s.confirmer == nil {
		return true, nil
	}
	return s.confirmer(ctx, set.Title, summaryPrompt(set.Title))
}

func summaryPrompt(setTitle string) string {
	return fmt.Sprintf(
		"Task set '%s' finished. Summarize status of each task and propose refinements for the next set.",
		setTitle,
	)
}
