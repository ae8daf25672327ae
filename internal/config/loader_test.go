package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexcore/runtime/internal/coretypes"
)

func TestLoadFileEmptyDocumentYieldsNilPatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "00-empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o644))

	patch, err := LoadFile(path)
	require.NoError(t, err)
	assert.Nil(t, patch)
}

func TestLoadFileParsesPatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "10-compact.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compact:\n  max_files: 7\n"), 0o644))

	patch, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, patch)
	require.NotNil(t, patch.Compact)
	require.NotNil(t, patch.Compact.MaxFiles)
	assert.Equal(t, 7, *patch.Compact.MaxFiles)
}

func TestLoadDirMissingDirectoryIsNotAnError(t *testing.T) {
	patches, err := LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Empty(t, patches)
}

func TestLoadDirOrdersFilesLexicographically(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20-b.yaml"), []byte("compact:\n  max_files: 2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "10-a.yaml"), []byte("compact:\n  max_files: 1\n"), 0o644))

	patches, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, patches, 2)
	assert.Equal(t, 1, *patches[0].Compact.MaxFiles)
	assert.Equal(t, 2, *patches[1].Compact.MaxFiles)
}

func TestLoadDirReturnsParseErrorImmediately(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(": not valid yaml :::"), 0o644))

	_, err := LoadDir(dir)
	assert.Error(t, err)
}

func TestNewStoreAppliesWorkspaceScopeFile(t *testing.T) {
	workspace := t.TempDir()
	codexDir := filepath.Join(workspace, ".codex")
	require.NoError(t, os.MkdirAll(codexDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(codexDir, "10-compact.yaml"), []byte("compact:\n  max_files: 3\n"), 0o644))

	store, err := NewStore(workspace, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, store.Snapshot().Compact.MaxFiles)
}

func TestApplyRuntimePatchOverridesPersistentLayers(t *testing.T) {
	workspace := t.TempDir()
	store, err := NewStore(workspace, nil)
	require.NoError(t, err)

	store.ApplyRuntimePatch(Patch{Compact: &CompactPatch{MaxFiles: intp(99)}})

	assert.Equal(t, 99, store.Snapshot().Compact.MaxFiles)
}

func TestSubscribeReceivesSnapshotAfterReload(t *testing.T) {
	workspace := t.TempDir()
	store, err := NewStore(workspace, nil)
	require.NoError(t, err)

	ch, cancel := store.Subscribe()
	defer cancel()

	store.ApplyRuntimePatch(Patch{Compact: &CompactPatch{MaxFiles: intp(5)}})

	select {
	case cfg := <-ch:
		assert.Equal(t, 5, cfg.Compact.MaxFiles)
	default:
		t.Fatal("expected a broadcast snapshot after ApplyRuntimePatch")
	}
}

func TestPersistWritesScopedRuntimeFile(t *testing.T) {
	workspace := t.TempDir()
	store, err := NewStore(workspace, nil)
	require.NoError(t, err)

	err = store.Persist(coretypes.ScopeWorkspace, Patch{})
	require.NoError(t, err)

	dir, err := ScopeDir(coretypes.ScopeWorkspace, workspace)
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(dir, runtimeFileName))
	assert.NoError(t, statErr)
}
