package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/codexcore/runtime/internal/coretypes"
)

// recognizedExtensions lists file extensions the loader parses as config
// layers; matching files are read in lexicographic filename order.
var recognizedExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

// ScopeDir resolves the filesystem directory backing a persistent scope.
// workspaceRoot is the caller-supplied workspace directory (used for
// ScopeWorkspace); System and User are resolved via the OS-conventional
// config directory, using only the standard library.
func ScopeDir(scope coretypes.Scope, workspaceRoot string) (string, error) {
	switch scope {
	case coretypes.ScopeSystem:
		return systemConfigDir(), nil
	case coretypes.ScopeUser:
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("resolve user config dir: %w", err)
		}
		return filepath.Join(dir, "codex"), nil
	case coretypes.ScopeWorkspace:
		return filepath.Join(workspaceRoot, ".codex"), nil
	default:
		return "", fmt.Errorf("scope %s has no filesystem location", scope)
	}
}

func systemConfigDir() string {
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			return filepath.Join(pd, "Codex")
		}
		return `C:\ProgramData\Codex`
	}
	return "/etc/codex"
}

// LoadDir reads every recognized-extension file in dir, in lexicographic
// order, and returns the patches parsed from each. A missing directory
// yields no patches and no error (an unconfigured scope is not a failure).
// A parse error for any single file is returned immediately with the
// offending path, matching the engine's "loud misconfiguration" policy
// carried over from the Hook Engine's load contract (§4.2) applied
// consistently to config layers too.
func LoadDir(dir string) ([]Patch, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read config dir %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if recognizedExtensions[filepath.Ext(e.Name())] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	patches := make([]Patch, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		patch, err := LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if patch != nil {
			patches = append(patches, *patch)
		}
	}
	return patches, nil
}

// LoadFile parses a single config layer file. An empty file (a YAML
// document that decodes to null) yields (nil, nil): an empty patch, not a
// parse error.
func LoadFile(path string) (*Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	var patch Patch
	if err := yaml.Unmarshal(data, &patch); err != nil {
		return nil, err
	}
	if isEmptyPatch(data) {
		return nil, nil
	}
	return &patch, nil
}

func isEmptyPatch(data []byte) bool {
	var probe any
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return false
	}
	return probe == nil
}
