package config

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/codexcore/runtime/internal/async"
	"github.com/codexcore/runtime/internal/coretypes"
)

const watchDebounce = 250 * time.Millisecond

// watcher observes every persistent scope directory non-recursively; any
// filesystem event in a watched directory triggers a debounced full reload
// of the owning Store.
type watcher struct {
	store *Store
	fsw   *fsnotify.Watcher
	stop  chan struct{}
	once  sync.Once

	mu    sync.Mutex
	timer *time.Timer
}

// Watch starts a filesystem watcher over every persistent scope directory
// and returns a stop function. Only one watcher runs per Store: calling
// Watch twice on the same Store without stopping the first watcher returns
// an error.
func (s *Store) Watch(ctx context.Context) (stop func(), err error) {
	s.mu.RLock()
	prev := s.watcher
	s.mu.RUnlock()
	if prev != nil {
		select {
		case <-prev.stop:
		default:
			return nil, errors.New("config: store already has a running watcher")
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, scope := range coretypes.OrderedPersistentScopes {
		dir, derr := ScopeDir(scope, s.workspaceRoot)
		if derr != nil {
			continue
		}
		// A scope directory may not exist yet; that's not fatal, matching
		// the Store's "unconfigured scope" tolerance in LoadDir.
		_ = fsw.Add(dir)
	}

	w := &watcher{store: s, fsw: fsw, stop: make(chan struct{})}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	async.Go(s.logger, "config.watch", w.loop)
	if ctx != nil {
		async.Go(s.logger, "config.watch.ctx", func() {
			select {
			case <-ctx.Done():
				w.Stop()
			case <-w.stop:
			}
		})
	}
	return w.Stop, nil
}

func (w *watcher) loop() {
	for {
		select {
		case <-w.stop:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.scheduleReload(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.store.logger.Warn("config watcher error: %v", err)
		}
	}
}

func (w *watcher) scheduleReload(fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(watchDebounce, func() {
		select {
		case <-w.stop:
			return
		default:
		}
		w.store.Reload()
	})
}

// Stop terminates the watcher. Safe to call more than once.
func (w *watcher) Stop() {
	w.once.Do(func() {
		close(w.stop)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		_ = w.fsw.Close()
	})
}
