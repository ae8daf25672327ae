package dispatch

import "github.com/codexcore/runtime/internal/taskset"

// ChannelSink is a taskset.EventSink that forwards every UIEvent onto a
// buffered channel, for a CLI or UI layer to range over concurrently with
// the scheduler run. Emit drops the event (logging nothing — the caller
// decides buffer sizing) rather than blocking the scheduler if the
// channel is full, since a UI falling behind must never stall task
// execution.
type ChannelSink struct {
	events chan taskset.UIEvent
}

// NewChannelSink creates a ChannelSink with the given buffer size.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan taskset.UIEvent, buffer)}
}

// Events returns the receive side of the event channel.
func (c *ChannelSink) Events() <-chan taskset.UIEvent { return c.events }

// Close closes the event channel; callers must stop calling Emit first.
func (c *ChannelSink) Close() { close(c.events) }

// Emit implements taskset.EventSink.
func (c *ChannelSink) Emit(ev taskset.UIEvent) {
	select {
	case c.events <- ev:
	default:
	}
}
