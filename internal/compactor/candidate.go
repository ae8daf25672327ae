package compactor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
)

// defaultIncludeGlobs is used when no include globs are configured and the
// caller supplies no manual-mode override.
var defaultIncludeGlobs = []string{"**/*"}

// candidates traverses workspaceRoot, respecting .gitignore /
// .git/info/exclude and a hard-coded ".git" directory exclusion, and
// returns regular files whose relative path matches includeGlobs and whose
// extension is in the text-extension allowlist. Order is traversal
// (directory) order; callers that need a ranked order sort afterward.
func candidates(workspaceRoot string, includeGlobs []string) ([]string, error) {
	if len(includeGlobs) == 0 {
		includeGlobs = defaultIncludeGlobs
	}
	ignorer := loadIgnorer(workspaceRoot)

	var out []string
	err := filepath.WalkDir(workspaceRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Compactor I/O error: swallowed per-file, traversal continues.
		}
		rel, relErr := filepath.Rel(workspaceRoot, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			if ignorer != nil && ignorer.MatchesPath(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if ignorer != nil && ignorer.MatchesPath(rel) {
			return nil
		}
		if !matchesAny(rel, includeGlobs) {
			return nil
		}
		if !textExtensions[extensionOf(rel)] {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func matchesAny(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

func extensionOf(rel string) string {
	ext := filepath.Ext(rel)
	return strings.TrimPrefix(ext, ".")
}

// loadIgnorer compiles the workspace's .gitignore and .git/info/exclude, if
// present. A missing or unreadable ignore file yields a nil ignorer (no
// additional files excluded beyond the hard-coded .git directory).
func loadIgnorer(workspaceRoot string) *gitignore.GitIgnore {
	var lines []string
	for _, rel := range []string{".gitignore", filepath.Join(".git", "info", "exclude")} {
		data, err := os.ReadFile(filepath.Join(workspaceRoot, rel))
		if err != nil {
			continue
		}
		lines = append(lines, strings.Split(string(data), "\n")...)
	}
	if len(lines) == 0 {
		return nil
	}
	return gitignore.CompileIgnoreLines(lines...)
}
