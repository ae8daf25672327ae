package compactor

import (
	"github.com/go-git/go-git/v5"
)

// gitChanges returns the union of the index entries and the non-ignored
// workdir status changes reported by the repository discovered at
// workspaceRoot, as relative, slash-separated paths. A repository that
// fails to open yields an empty set, not an error.
func gitChanges(workspaceRoot string) map[string]bool {
	out := map[string]bool{}

	repo, err := git.PlainOpenWithOptions(workspaceRoot, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return out
	}
	wt, err := repo.Worktree()
	if err != nil {
		return out
	}
	status, err := wt.Status()
	if err != nil {
		return out
	}
	for path, entry := range status {
		if entry.Staging != git.Unmodified || entry.Worktree != git.Unmodified {
			out[path] = true
		}
	}
	return out
}
