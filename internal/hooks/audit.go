package hooks

import (
	"fmt"
	"os"
	"path/filepath"
)

// appendAuditLog appends a single "<timestamp> <event>" line to
// <cwd>/.codex/audit.log, creating the directory if necessary.
func appendAuditLog(cwd, timestamp, event string) error {
	dir := filepath.Join(cwd, ".codex")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create audit log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "audit.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%s %s\n", timestamp, event)
	return err
}
