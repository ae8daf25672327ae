// Package async provides small helpers for running panic-safe background
// goroutines, shared by the config watcher and the scheduler's parallel
// task sets.
package async

import (
	"runtime/debug"

	"github.com/codexcore/runtime/internal/logging"
)

// Go runs fn in a goroutine guarded by panic recovery. logger may be nil.
func Go(logger logging.Logger, name string, fn func()) {
	logger = logging.OrNop(logger)
	go func() {
		defer Recover(logger, name)
		fn()
	}()
}

// Recover logs panic details without crashing the process. Intended to be
// deferred at the top of any goroutine this package did not itself spawn.
func Recover(logger logging.Logger, name string) {
	if r := recover(); r != nil {
		logger = logging.OrNop(logger)
		if name == "" {
			logger.Error("goroutine panic: %v, stack: %s", r, debug.Stack())
			return
		}
		logger.Error("goroutine panic [%s]: %v, stack: %s", name, r, debug.Stack())
	}
}
