package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/codexcore/runtime/internal/taskset"
)

func loadPlan(path string) (taskset.TaskSetPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return taskset.TaskSetPlan{}, fmt.Errorf("read plan %s: %w", path, err)
	}
	var plan taskset.TaskSetPlan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return taskset.TaskSetPlan{}, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return plan, nil
}

// validatePlan checks the structural invariants a TaskSetPlan must hold
// before it can be scheduled: unique set IDs, unique task IDs within each
// set, a recognized set mode, and a recognized step kind at every nesting
// level. It returns every violation found, not just the first.
func validatePlan(plan taskset.TaskSetPlan) []string {
	var problems []string

	if plan.SessionID == "" {
		problems = append(problems, "session_id is required")
	}

	seenSets := map[string]bool{}
	for _, set := range plan.Sets {
		if set.SetID == "" {
			problems = append(problems, "a set is missing set_id")
		} else if seenSets[set.SetID] {
			problems = append(problems, fmt.Sprintf("duplicate set_id %q", set.SetID))
		}
		seenSets[set.SetID] = true

		if set.Mode != taskset.ModeSequential && set.Mode != taskset.ModeParallel {
			problems = append(problems, fmt.Sprintf("set %q: mode must be %q or %q, got %q", set.SetID, taskset.ModeSequential, taskset.ModeParallel, set.Mode))
		}

		seenTasks := map[string]bool{}
		for _, task := range set.Tasks {
			if task.ID == "" {
				problems = append(problems, fmt.Sprintf("set %q: a task is missing id", set.SetID))
			} else if seenTasks[task.ID] {
				problems = append(problems, fmt.Sprintf("set %q: duplicate task id %q", set.SetID, task.ID))
			}
			seenTasks[task.ID] = true

			for _, step := range task.Steps {
				validateStep(set.SetID, task.ID, step, &problems)
			}
		}
	}

	return problems
}

func validateStep(setID, taskID string, step taskset.TaskStep, problems *[]string) {
	switch step.Kind {
	case taskset.StepChat, taskset.StepExec, taskset.StepMcpCall, taskset.StepGit:
	case taskset.StepSubAgent:
		for _, nested := range step.Steps {
			validateStep(setID, taskID, nested, problems)
		}
	default:
		*problems = append(*problems, fmt.Sprintf("set %q task %q: unrecognized step kind %q", setID, taskID, step.Kind))
	}
}
