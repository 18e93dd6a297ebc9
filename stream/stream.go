// Package stream defines the Sink interface used to forward a user-facing
// subset of execution lifecycle events (tool dispatched/completed,
// execution completed) to an external consumer, e.g. a UI subscribed to a
// Redis stream via pulsesink.
package stream

import "context"

// EventType enumerates the user-facing event kinds a Sink may receive.
type EventType string

const (
	EventToolStart        EventType = "tool_start"
	EventToolEnd          EventType = "tool_end"
	EventExecutionComplete EventType = "execution_complete"
)

// Event is a user-facing lifecycle notification.
type Event struct {
	Type        EventType
	ExecutionID string
	Tool        string
	Content     string
}

// Sink publishes Events to an external consumer.
type Sink interface {
	Send(ctx context.Context, event Event) error
	Close(ctx context.Context) error
}
