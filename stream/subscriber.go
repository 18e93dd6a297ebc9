package stream

import (
	"context"
	"errors"

	"github.com/sandboxptc/ptc/hooks"
)

// Subscriber adapts a hooks.Bus subscription into Sink.Send calls,
// translating the orchestrator's internal lifecycle events into the
// smaller, user-facing Event vocabulary a Sink understands.
type Subscriber struct {
	sink Sink
}

// NewSubscriber constructs a Subscriber publishing to sink. Returns an
// error if sink is nil.
func NewSubscriber(sink Sink) (*Subscriber, error) {
	if sink == nil {
		return nil, errors.New("stream: sink is required")
	}
	return &Subscriber{sink: sink}, nil
}

// HandleEvent implements hooks.Subscriber.
func (s *Subscriber) HandleEvent(ctx context.Context, event hooks.Event) error {
	switch event.Type {
	case hooks.ToolDispatched:
		return s.sink.Send(ctx, Event{Type: EventToolStart, ExecutionID: event.ExecutionID, Tool: event.Tool})
	case hooks.ToolCompleted:
		return s.sink.Send(ctx, Event{Type: EventToolEnd, ExecutionID: event.ExecutionID, Tool: event.Tool, Content: event.Message})
	case hooks.ExecutionCompleted:
		return s.sink.Send(ctx, Event{Type: EventExecutionComplete, ExecutionID: event.ExecutionID, Content: event.Message})
	default:
		return nil
	}
}
