package compactor

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/codexcore/runtime/internal/todo"
)

const (
	weightGitChanged    = 5000
	weightTodoReferenced = 3000
	weightAuditMatch     = 2000
	mtimeScoreCap        = 1_000_000
)

// scoreFiles computes a deterministic ranking: descending
// score, ties broken by path sort. lister supplies the open/in-progress
// TodoItems whose Files count as to-do-referenced paths.
func scoreFiles(workspaceRoot string, files []string, lister TodoLister, now time.Time) []string {
	changed := gitChanges(workspaceRoot)
	audited := auditReferencedFiles(workspaceRoot)
	todoFiles := todoReferencedSet(lister)

	type scored struct {
		path  string
		score int64
	}
	out := make([]scored, 0, len(files))
	for _, rel := range files {
		s := int64(0)
		if changed[rel] {
			s += weightGitChanged
		}
		if todoFiles[rel] {
			s += weightTodoReferenced
		}
		if audited[rel] {
			s += weightAuditMatch
		}
		s += mtimeScore(workspaceRoot, rel, now) / 10
		out = append(out, scored{path: rel, score: s})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		return out[i].path < out[j].path
	})

	ranked := make([]string, len(out))
	for i, s := range out {
		ranked[i] = s.path
	}
	return ranked
}

// mtimeScore = min(1_000_000, max(0, 1_000_000 - age_seconds)).
func mtimeScore(workspaceRoot, rel string, now time.Time) int64 {
	info, err := os.Stat(filepath.Join(workspaceRoot, rel))
	if err != nil {
		return 0
	}
	age := int64(now.Sub(info.ModTime()).Seconds())
	score := mtimeScoreCap - age
	if score < 0 {
		score = 0
	}
	if score > mtimeScoreCap {
		score = mtimeScoreCap
	}
	return score
}

// TodoLister is the narrow view of the to-do store the Compactor needs:
// which files are referenced by a still-open task.
type TodoLister interface {
	OpenOrInProgress() []todo.Item
}

// todoReferencedSet collects the Files of every open/in-progress to-do
// item into a set of relative paths for scoring lookups. A nil lister
// yields an empty set.
func todoReferencedSet(lister TodoLister) map[string]bool {
	out := map[string]bool{}
	if lister == nil {
		return out
	}
	for _, item := range lister.OpenOrInProgress() {
		for _, f := range item.Files {
			out[filepath.ToSlash(f)] = true
		}
	}
	return out
}
