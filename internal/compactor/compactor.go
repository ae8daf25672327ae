// Package compactor implements the Compactor: a
// file-selection and focus-prompt generator that chooses candidate files
// for context summarization, and gates auto-triggering on stage and
// interval policy.
package compactor

import (
	"time"

	"github.com/codexcore/runtime/internal/config"
	"github.com/codexcore/runtime/internal/logging"
)

// textExtensions is the fixed allowlist of extensions eligible as
// compaction candidates.
var textExtensions = map[string]bool{}

func init() {
	for _, ext := range []string{
		"rs", "md", "toml", "json", "yml", "yaml", "ts", "tsx", "js", "py",
		"go", "java", "kt", "c", "h", "cpp", "hpp", "txt", "sh", "bash",
		"zsh", "fish", "cfg", "ini",
	} {
		textExtensions[ext] = true
	}
}

// Stage names the point in a task's lifecycle an auto-compaction is
// considered at.
type Stage string

const (
	StageMidTask    Stage = "mid_task"
	StageEndOfTask  Stage = "end_of_task"
)

// Compactor assembles compaction candidates and focus prompts.
type Compactor struct {
	workspaceRoot string
	logger        logging.Logger

	lastCompaction time.Time
	hasCompacted   bool
}

// New constructs a Compactor rooted at workspaceRoot.
func New(workspaceRoot string, logger logging.Logger) *Compactor {
	return &Compactor{workspaceRoot: workspaceRoot, logger: logging.OrNop(logger)}
}

// Result is what a compaction run returns to the caller: the chosen files
// and the focus prompt to hand to the summarization model.
type Result struct {
	Files       []string
	FocusPrompt string
}

// AutoTriggerPredicate implements the auto-trigger rule: true
// iff compact.auto_enable is true AND (stage != EndOfTask OR
// compact.auto_on_task_end is true) AND (no prior compaction OR elapsed >=
// compact.auto_min_interval_secs).
func (c *Compactor) AutoTriggerPredicate(cfg config.CompactConfig, stage Stage, now time.Time) bool {
	if !cfg.AutoEnable {
		return false
	}
	if stage == StageEndOfTask && !cfg.AutoOnTaskEnd {
		return false
	}
	if !c.hasCompacted {
		return true
	}
	elapsed := now.Sub(c.lastCompaction)
	return elapsed >= time.Duration(cfg.AutoMinIntervalSecs)*time.Second
}

// markCompacted records that a compaction just ran, for the next
// AutoTriggerPredicate evaluation's elapsed-time check.
func (c *Compactor) markCompacted(now time.Time) {
	c.hasCompacted = true
	c.lastCompaction = now
}
