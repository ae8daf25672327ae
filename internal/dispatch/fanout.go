package dispatch

import "github.com/codexcore/runtime/internal/taskset"

// FanOut is a taskset.EventSink that forwards every UIEvent to each of its
// sinks in order. A nil sink in the list is skipped, so callers can build
// the list conditionally (e.g. only include a session-log sink when one
// is configured) without filtering.
type FanOut struct {
	sinks []taskset.EventSink
}

// NewFanOut constructs a FanOut over sinks.
func NewFanOut(sinks ...taskset.EventSink) *FanOut {
	return &FanOut{sinks: sinks}
}

// Emit implements taskset.EventSink.
func (f *FanOut) Emit(ev taskset.UIEvent) {
	for _, sink := range f.sinks {
		if sink == nil {
			continue
		}
		sink.Emit(ev)
	}
}
