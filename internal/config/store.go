// Package config implements the Layered Configuration Store:
// a four-tier (system → user → workspace → ephemeral runtime) config with
// deterministic merge semantics, live file-watching, broadcast
// subscriptions, role-based model routing, and scoped persistence.
package config

import (
	"fmt"
	"sync"

	"github.com/codexcore/runtime/internal/coretypes"
	"github.com/codexcore/runtime/internal/logging"
)

// Store loads, merges, watches, and broadcasts the layered Config. It is a
// shared dependency of every other component; callers take an immutable
// snapshot via Snapshot() or a live feed via Subscribe().
type Store struct {
	mu            sync.RWMutex
	workspaceRoot string
	current       Config
	runtimeOverlay Patch

	logger  logging.Logger
	bcast   *broadcaster
	watcher *watcher
}

// NewStore loads the three persistent scopes under workspaceRoot and
// returns a Store positioned at the resulting snapshot. No watching is
// started; call Watch to begin live reloads.
func NewStore(workspaceRoot string, logger logging.Logger) (*Store, error) {
	s := &Store{
		workspaceRoot: workspaceRoot,
		logger:        logging.OrNop(logger),
		bcast:         newBroadcaster(),
	}
	if err := s.reloadLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current immutable Config.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// PickModel resolves role against the current snapshot.
func (s *Store) PickModel(role coretypes.ModelRole) coretypes.ModelTarget {
	return s.Snapshot().PickModel(role)
}

// Profile looks up a named model profile against the current snapshot, so
// a Store can be passed anywhere a ModelResolver is expected (the Hook
// Engine, the Task-Set Scheduler) without the caller taking its own
// Snapshot first.
func (s *Store) Profile(name string) (coretypes.ModelTarget, bool) {
	return s.Snapshot().Profile(name)
}

// Subscribe returns a channel receiving every new snapshot after a
// successful reload, and a function to cancel the subscription.
func (s *Store) Subscribe() (<-chan Config, func()) {
	return s.bcast.Subscribe()
}

// reloadLocked recomputes current from the three persistent scopes plus the
// runtime overlay. Reload is best-effort for the filesystem scopes (watch
// errors are suppressed, the prior snapshot retained) but the initial load
// in NewStore still surfaces a parse error loudly: the very first load has
// no prior snapshot to retain, so a parse error there is returned to the
// caller.
func (s *Store) reloadLocked() error {
	cfg := Default()
	for _, scope := range coretypes.OrderedPersistentScopes {
		dir, err := ScopeDir(scope, s.workspaceRoot)
		if err != nil {
			return err
		}
		patches, err := LoadDir(dir)
		if err != nil {
			return err
		}
		cfg = MergeAll(cfg, patches...)
	}
	cfg = Merge(cfg, s.runtimeOverlay)
	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return nil
}

// Reload re-reads the persistent scopes and the runtime overlay. Errors are
// suppressed: the prior snapshot is retained and the error is logged. On
// success, the new snapshot is broadcast.
func (s *Store) Reload() {
	if err := s.reloadLocked(); err != nil {
		s.logger.Warn("config reload failed, retaining prior snapshot: %v", err)
		return
	}
	s.bcast.Publish(s.Snapshot())
}

// ApplyRuntimePatch merges patch into the in-memory runtime overlay in
// place, then triggers a full reload so the lower layers still compose
// underneath it. The overlay is never persisted to disk.
func (s *Store) ApplyRuntimePatch(patch Patch) {
	s.mu.Lock()
	merged := Merge(Config{}, s.runtimeOverlay)
	merged = Merge(merged, patch)
	s.runtimeOverlay = merged.AsPatch()
	s.mu.Unlock()
	s.Reload()
}

// Persist serializes patch to the given scope's 99-runtime.yaml file.
// ScopeRuntime is rejected: the runtime overlay is ephemeral by definition.
func (s *Store) Persist(scope coretypes.Scope, patch Patch) error {
	if !scope.Persistent() {
		return fmt.Errorf("config: scope %s is not persistable", scope)
	}
	return persistPatch(scope, s.workspaceRoot, patch)
}
