package compactor

import (
	"fmt"
	"strings"
	"time"

	"github.com/codexcore/runtime/internal/config"
)

// Manual runs manual mode: the caller supplies focus text, a conversation
// tail, and an include-glob override (empty falls back to cfg's configured
// globs). Candidates are listed in traversal order and truncated to
// max_files with no scoring — manual mode trusts the caller's own focus
// text over the git/to-do/audit signals auto mode ranks by.
func (c *Compactor) Manual(userFocus, conversationTail string, includeGlobs []string, cfg config.CompactConfig, now time.Time) (Result, error) {
	globs := includeGlobs
	if len(globs) == 0 {
		globs = cfg.IncludeGlobs
	}

	files, err := candidates(c.workspaceRoot, globs)
	if err != nil {
		return Result{}, fmt.Errorf("compactor: list candidates: %w", err)
	}

	if cfg.MaxFiles > 0 && len(files) > cfg.MaxFiles {
		files = files[:cfg.MaxFiles]
	}

	return Result{
		Files:       files,
		FocusPrompt: buildManualFocusPrompt(userFocus, conversationTail),
	}, nil
}

// buildManualFocusPrompt assembles the fixed-shape prompt manual mode hands
// to the summarization model.
func buildManualFocusPrompt(userFocus, conversationTail string) string {
	var b strings.Builder
	if userFocus != "" {
		b.WriteString("User focus:\n")
		b.WriteString(userFocus)
		b.WriteString("\n\n")
	}
	b.WriteString("Conversation context (tail):\n")
	b.WriteString(conversationTail)
	b.WriteString("\n\n")
	b.WriteString("Produce: What changed, Why, Open TODOs, Next steps.")
	return b.String()
}

// Complete records that the Result produced by the most recent Manual or
// Auto call was actually used to compact, advancing the auto-trigger
// interval baseline.
func (c *Compactor) Complete(now time.Time) {
	c.markCompacted(now)
}
