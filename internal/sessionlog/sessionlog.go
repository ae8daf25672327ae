// Package sessionlog implements the Session Log: an
// append-only structured event log with a daily directory layout, string
// redaction, and purge-by-age.
package sessionlog

import "time"

// EventKind discriminates the SessionEvent tagged variant.
type EventKind string

const (
	EventUserMsg  EventKind = "user_msg"
	EventModelMsg EventKind = "model_msg"
	EventExec     EventKind = "exec"
	EventFileRef  EventKind = "file_ref"
	EventMeta     EventKind = "meta"
)

// Event is a single persisted SessionEvent: an RFC-3339 timestamp plus a
// Kind-tagged payload.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Kind      EventKind      `json:"kind"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// MarshalTimestamp formats Timestamp as RFC-3339, the wire form required
// for every persisted event.
func (e Event) MarshalTimestamp() string {
	return e.Timestamp.UTC().Format(time.RFC3339)
}
