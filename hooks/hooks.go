// Package hooks implements a small fan-out event bus used for execution
// observability: the orchestrator publishes lifecycle events and any number
// of subscribers (a stream sink, a metrics recorder, a test probe) can
// receive them without the orchestrator knowing they exist.
package hooks

import (
	"context"
	"sync"

	"github.com/sandboxptc/ptc/telemetry"
)

// EventType enumerates well-known orchestrator lifecycle events.
type EventType string

const (
	// ExecutionStarted fires once, before the sandbox is provisioned.
	ExecutionStarted EventType = "execution_started"
	// ToolDispatched fires when a tool request sentinel is observed and
	// the call has passed the recursion-limit check.
	ToolDispatched EventType = "tool_dispatched"
	// ToolCompleted fires once the tool's response has been written,
	// whether the tool succeeded or failed.
	ToolCompleted EventType = "tool_completed"
	// ExecutionCompleted fires once, after the final or error sentinel
	// has been parsed and before sandbox teardown.
	ExecutionCompleted EventType = "execution_completed"
)

// Event carries one lifecycle notification.
type Event struct {
	Type        EventType
	ExecutionID string
	Tool        string
	RequestID   string
	Success     bool
	Message     string

	// Telemetry carries per-call observability metadata on ToolCompleted
	// events: duration, tool name, and the recomputed cache key.
	Telemetry *telemetry.ToolTelemetry
}

// Subscriber receives published events.
type Subscriber interface {
	HandleEvent(ctx context.Context, event Event) error
}

// SubscriberFunc adapts an ordinary function to Subscriber.
type SubscriberFunc func(ctx context.Context, event Event) error

// HandleEvent implements Subscriber.
func (fn SubscriberFunc) HandleEvent(ctx context.Context, event Event) error {
	return fn(ctx, event)
}

// Subscription is a handle for unregistering from a Bus.
type Subscription interface {
	Close()
}

// Bus is an event bus: Publish fans an event out to every registered
// Subscriber. Publish calls subscribers synchronously, so a slow subscriber
// delays the publisher; subscriber errors are collected and returned to the
// caller of Publish, which may log them.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[int]Subscriber
	nextID      int
}

// NewBus constructs an empty Bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[int]Subscriber)}
}

// Register adds a subscriber and returns a Subscription used to remove it.
func (b *Bus) Register(sub Subscriber) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = sub
	return &subscription{bus: b, id: id}
}

// Publish synchronously invokes every registered subscriber with event. A
// subscriber error does not stop delivery to the remaining subscribers.
func (b *Bus) Publish(ctx context.Context, event Event) []error {
	b.mu.RLock()
	subs := make([]Subscriber, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.HandleEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

type subscription struct {
	bus *Bus
	id  int
}

func (s *subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	delete(s.bus.subscribers, s.id)
}
