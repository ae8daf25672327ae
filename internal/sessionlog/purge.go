package sessionlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Purge removes session-date directories under sessionsDir whose mtime
// predates now - keepDays*86400s. A date directory is removed as a whole;
// individual session subdirectories are not inspected separately. A date
// directory's mtime changes when a session subdirectory is added or
// removed, not when events are appended to a session's files.
func Purge(sessionsDir string, keepDays int, now time.Time) error {
	cutoff := now.Add(-time.Duration(keepDays) * 24 * time.Hour)
	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("sessionlog: read sessions dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.RemoveAll(filepath.Join(sessionsDir, e.Name()))
		}
	}
	return nil
}
