package compactor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/codexcore/runtime/internal/config"
	"github.com/codexcore/runtime/internal/todo"
)

// FocusPromptGenerator produces the focus prompt handed to the
// summarization model in auto mode. The Compactor supplies the stage and
// two JSON snapshots; the caller owns how the prompt is actually worded
// (it may itself call a model).
type FocusPromptGenerator func(stage Stage, todoSnapshot, activitySnapshot json.RawMessage) (string, error)

// ActivitySnapshot is the shape auto mode marshals as the generator's
// activity JSON argument: the ranked candidate files with the signals
// that drove their ranking.
type ActivitySnapshot struct {
	Files []ActivityFile `json:"files"`
}

// ActivityFile reports why a single candidate was ranked where it was.
type ActivityFile struct {
	Path           string `json:"path"`
	GitChanged     bool   `json:"git_changed"`
	TodoReferenced bool   `json:"todo_referenced"`
	AuditMatched   bool   `json:"audit_matched"`
}

// Auto runs auto mode: if AutoTriggerPredicate(cfg, stage, now) is false,
// it returns an empty Result and does nothing else (not even pipeline
// evaluation, so a disabled Compactor costs nothing). Otherwise it scores
// candidates with scoreFiles and caps them to cfg.MaxFiles, builds the todo and
// activity JSON snapshots, and asks generate for the focus prompt.
func (c *Compactor) Auto(cfg config.CompactConfig, lister TodoLister, stage Stage, now time.Time, generate FocusPromptGenerator) (Result, error) {
	if !c.AutoTriggerPredicate(cfg, stage, now) {
		return Result{}, nil
	}

	files, err := candidates(c.workspaceRoot, cfg.IncludeGlobs)
	if err != nil {
		return Result{}, fmt.Errorf("compactor: list candidates: %w", err)
	}

	changed := gitChanges(c.workspaceRoot)
	audited := auditReferencedFiles(c.workspaceRoot)
	todoFiles := todoReferencedSet(lister)

	ranked := scoreFiles(c.workspaceRoot, files, lister, now)
	if cfg.MaxFiles > 0 && len(ranked) > cfg.MaxFiles {
		ranked = ranked[:cfg.MaxFiles]
	}

	activity := ActivitySnapshot{Files: make([]ActivityFile, 0, len(ranked))}
	for _, f := range ranked {
		activity.Files = append(activity.Files, ActivityFile{
			Path:           f,
			GitChanged:     changed[f],
			TodoReferenced: todoFiles[f],
			AuditMatched:   audited[f],
		})
	}
	activityJSON, err := json.Marshal(activity)
	if err != nil {
		return Result{}, fmt.Errorf("compactor: marshal activity snapshot: %w", err)
	}

	var todoItems []todo.Item
	if lister != nil {
		todoItems = lister.OpenOrInProgress()
	}
	todoJSON, err := json.Marshal(todoItems)
	if err != nil {
		return Result{}, fmt.Errorf("compactor: marshal to-do snapshot: %w", err)
	}

	prompt, err := generate(stage, todoJSON, activityJSON)
	if err != nil {
		return Result{}, fmt.Errorf("compactor: generate focus prompt: %w", err)
	}

	return Result{Files: ranked, FocusPrompt: prompt}, nil
}
