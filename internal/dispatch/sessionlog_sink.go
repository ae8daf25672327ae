package dispatch

import (
	"github.com/codexcore/runtime/internal/logging"
	"github.com/codexcore/runtime/internal/sessionlog"
	"github.com/codexcore/runtime/internal/taskset"
)

// SessionLogSink adapts a sessionlog.Writer to taskset.EventSink, mapping
// each UIEvent onto a sessionlog.Event with a Meta kind (the scheduler's
// UI events are orchestration metadata, not user/model conversational
// turns, which are appended separately by the chat bridge's caller).
type SessionLogSink struct {
	writer *sessionlog.Writer
	logger logging.Logger
}

// NewSessionLogSink wraps writer. logger may be nil.
func NewSessionLogSink(writer *sessionlog.Writer, logger logging.Logger) *SessionLogSink {
	return &SessionLogSink{writer: writer, logger: logging.OrNop(logger)}
}

// Emit implements taskset.EventSink. Append errors are logged, not
// returned: EventSink.Emit has no error return, and a session-log write
// failure must never interrupt plan execution.
func (s *SessionLogSink) Emit(ev taskset.UIEvent) {
	payload := map[string]any{
		"kind":     string(ev.Kind),
		"set_id":   ev.SetID,
		"task_id":  ev.TaskID,
		"task":     ev.TaskName,
		"progress": ev.ProgressMsg,
	}
	if ev.Kind == taskset.UIEventTaskEnd {
		payload["ok"] = ev.Outcome.OK
		payload["error"] = ev.Outcome.Error
		payload["duration_ms"] = ev.Outcome.Duration.Milliseconds()
	}
	if err := s.writer.Append(sessionlog.Event{Kind: sessionlog.EventMeta, Payload: payload}); err != nil {
		s.logger.Warn("dispatch: session log append failed: %v", err)
	}
}
