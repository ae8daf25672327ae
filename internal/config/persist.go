package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/codexcore/runtime/internal/coretypes"
)

// runtimeFileName is the default filename scoped persistence writes to,
// persisted as YAML patches, not full config snapshots.
const runtimeFileName = "99-runtime.yaml"

// persistPatch serializes patch to <scopeDir>/99-runtime.yaml, creating the
// scope directory if necessary.
func persistPatch(scope coretypes.Scope, workspaceRoot string, patch Patch) error {
	dir, err := ScopeDir(scope, workspaceRoot)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scope dir %s: %w", dir, err)
	}
	data, err := yaml.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal config patch: %w", err)
	}
	path := filepath.Join(dir, runtimeFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config patch %s: %w", path, err)
	}
	return nil
}
