// Package dispatch wires concrete bridge implementations and UI event
// sinks around the Task-Set Scheduler: an os/exec-backed ExecBridge, a
// fan-out EventSink that feeds both a caller channel and the session log,
// and bridge-error translation into the Scheduler's expected shapes.
package dispatch

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/codexcore/runtime/internal/taskset"
)

// outputPreviewLimit caps how much combined stdout/stderr is retained in
// an ExecResult, mirroring the Hook Engine's exec action which cares only
// about the exit code, not full output capture.
const outputPreviewLimit = 4096

// NewExecBridge returns a taskset.ExecBridge that runs cmd/args in cwd via
// os/exec, capturing combined output up to outputPreviewLimit bytes. A
// non-zero exit is reported through ExecResult.ExitCode, never as a Go
// error — only a failure to start the process (missing binary, bad cwd)
// is a Go error, matching the per-step protocol's "non-zero exit marks
// the task not-ok; invocation failure aborts the step".
func NewExecBridge(cwd string) taskset.ExecBridge {
	return func(ctx context.Context, cmd string, args []string) (taskset.ExecResult, error) {
		c := exec.CommandContext(ctx, cmd, args...)
		c.Dir = cwd

		var buf bytes.Buffer
		c.Stdout = &buf
		c.Stderr = &buf

		err := c.Run()
		exitCode := 0
		if err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				exitCode = exitErr.ExitCode()
			} else {
				return taskset.ExecResult{}, err
			}
		}

		out := buf.Bytes()
		if len(out) > outputPreviewLimit {
			out = out[:outputPreviewLimit]
		}
		return taskset.ExecResult{ExitCode: exitCode, OutputPreview: string(out)}, nil
	}
}
