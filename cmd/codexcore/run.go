package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/codexcore/runtime/internal/compactor"
	"github.com/codexcore/runtime/internal/config"
	"github.com/codexcore/runtime/internal/dispatch"
	"github.com/codexcore/runtime/internal/hooks"
	"github.com/codexcore/runtime/internal/logging"
	"github.com/codexcore/runtime/internal/sessionlog"
	"github.com/codexcore/runtime/internal/taskset"
	"github.com/codexcore/runtime/internal/todo"
)

func newRunCommand(workspaceRoot *string) *cobra.Command {
	var autoConfirm bool

	cmd := &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Execute a TaskSetPlan against this workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			if problems := validatePlan(plan); len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintln(cmd.ErrOrStderr(), p)
				}
				return fmt.Errorf("%d problem(s) found in plan", len(problems))
			}
			return runPlan(cmd.Context(), *workspaceRoot, plan, autoConfirm, cmd)
		},
	}
	cmd.Flags().BoolVar(&autoConfirm, "auto-confirm", true, "continue automatically at every inter-set confirmation point")
	return cmd
}

func runPlan(ctx context.Context, workspaceRoot string, plan taskset.TaskSetPlan, autoConfirm bool, cmd *cobra.Command) error {
	logger := logging.NewComponentLogger("codexcore")

	store, err := config.NewStore(workspaceRoot, logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	stop, err := store.Watch(ctx)
	if err != nil {
		logger.Warn("config watch disabled: %v", err)
	} else {
		defer stop()
	}
	cfg := store.Snapshot()

	engine := hooks.NewEngine(cfg.Hooks.RecursionLimit, store, logger)
	ruleDirs := append([]string{filepath.Join(workspaceRoot, ".codex", "hooks")}, cfg.Hooks.RuleDirs...)
	rules, err := hooks.LoadDirs(ruleDirs)
	if err != nil {
		return fmt.Errorf("load hook rules: %w", err)
	}
	engine.LoadRules(rules)

	todoPath := cfg.Todo.Path
	if !filepath.IsAbs(todoPath) {
		todoPath = filepath.Join(workspaceRoot, todoPath)
	}
	todoStore, err := todo.Open(todoPath, logger)
	if err != nil {
		return fmt.Errorf("open to-do store: %w", err)
	}

	sessionsDir := cfg.Session.Dir
	if sessionsDir == "" {
		sessionsDir = filepath.Join(workspaceRoot, ".codex", "sessions")
	}
	forms := sessionlog.FormLine
	if cfg.Session.ArrayForm {
		forms |= sessionlog.FormArray
	}
	logWriter, err := sessionlog.Open(sessionsDir, time.Now().UTC().Format("2006-01-02"), plan.SessionID, forms, logger)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer logWriter.Close()

	out := cmd.OutOrStdout()
	console := taskset.EventSinkFunc(func(ev taskset.UIEvent) {
		printUIEvent(out, ev)
	})
	sink := dispatch.NewFanOut(
		dispatch.NewSessionLogSink(logWriter, logger),
		console,
	)

	bridges := taskset.Bridges{
		Chat: noopChatBridge(logger),
		Exec: dispatch.NewExecBridge(workspaceRoot),
		Mcp:  noopMcpBridge(logger),
	}

	confirmer := taskset.Confirmer(dispatch.AutoConfirmer)
	if !autoConfirm {
		confirmer = dispatch.StdinConfirmer(func(setTitle, summary string) (bool, error) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\ncontinue to the next set? [Y/n] ", summary)
			var answer string
			fmt.Fscanln(cmd.InOrStdin(), &answer)
			return answer == "" || answer == "y" || answer == "Y", nil
		})
	}

	scheduler := taskset.New(engine, store, bridges, confirmer, workspaceRoot, logger)

	state, err := scheduler.Run(ctx, plan, sink)
	fmt.Fprintf(cmd.OutOrStdout(), "plan finished: %s\n", state)

	runCompaction(workspaceRoot, store.Snapshot(), todoStore, logger, cmd.OutOrStdout())

	return err
}

// runCompaction checks auto-trigger policy at end-of-task stage and, if it
// fires, selects focus files and logs the prompt a real summarization
// model would be handed. No chat backend is wired into this CLI, so the
// generated prompt is reported rather than sent anywhere; Complete still
// advances the auto-trigger interval baseline as if it had been consumed.
func runCompaction(workspaceRoot string, cfg config.Config, lister compactor.TodoLister, logger logging.Logger, out io.Writer) {
	if !cfg.Compact.AutoEnable {
		return
	}
	c := compactor.New(workspaceRoot, logger)
	now := time.Now().UTC()
	result, err := c.Auto(cfg.Compact, lister, compactor.StageEndOfTask, now, func(stage compactor.Stage, todoSnapshot, activitySnapshot json.RawMessage) (string, error) {
		return fmt.Sprintf("compact[%s]: %d bytes of to-do context, %d bytes of activity context", stage, len(todoSnapshot), len(activitySnapshot)), nil
	})
	if err != nil {
		logger.Warn("codexcore: auto-compaction failed: %v", err)
		return
	}
	if len(result.Files) == 0 {
		return
	}
	fmt.Fprintf(out, "auto-compaction focused on %d file(s):\n%s", len(result.Files), result.FocusPrompt)
	c.Complete(now)
}

func printUIEvent(out io.Writer, ev taskset.UIEvent) {
	switch ev.Kind {
	case taskset.UIEventTaskSetStart:
		fmt.Fprintf(out, "== set %s (%s): %s ==\n", ev.SetID, ev.SetMode, ev.Title)
	case taskset.UIEventTaskSetEnd:
		fmt.Fprintf(out, "== set %s done ==\n", ev.SetID)
	case taskset.UIEventTaskStart:
		fmt.Fprintf(out, "  -> task %s (%s)\n", ev.TaskID, ev.TaskName)
	case taskset.UIEventTaskProgress:
		fmt.Fprintf(out, "     %s\n", ev.ProgressMsg)
	case taskset.UIEventTaskEnd:
		status := "ok"
		if !ev.Outcome.OK {
			status = "failed: " + ev.Outcome.Error
		}
		fmt.Fprintf(out, "  <- task %s %s (%s)\n", ev.TaskID, status, ev.Outcome.Duration)
	}
}
