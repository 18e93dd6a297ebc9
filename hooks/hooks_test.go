package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBusPublishFanOut(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	count := 0
	sub := SubscriberFunc(func(ctx context.Context, event Event) error {
		count++
		return nil
	})
	bus.Register(sub)

	require.Empty(t, bus.Publish(ctx, Event{Type: ExecutionStarted, ExecutionID: "exec-1"}))
	require.Empty(t, bus.Publish(ctx, Event{Type: ExecutionCompleted, ExecutionID: "exec-1"}))
	require.Equal(t, 2, count)
}

func TestSubscriptionClose(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	count := 0
	subscription := bus.Register(SubscriberFunc(func(ctx context.Context, event Event) error {
		count++
		return nil
	}))

	bus.Publish(ctx, Event{Type: ToolDispatched, Tool: "get_weather"})
	subscription.Close()
	bus.Publish(ctx, Event{Type: ToolCompleted, Tool: "get_weather"})
	require.Equal(t, 1, count)
}

func TestPublishCollectsSubscriberErrorsWithoutStoppingDelivery(t *testing.T) {
	bus := NewBus()
	ctx := context.Background()

	delivered := 0
	bus.Register(SubscriberFunc(func(ctx context.Context, event Event) error {
		return errors.New("sink unavailable")
	}))
	bus.Register(SubscriberFunc(func(ctx context.Context, event Event) error {
		delivered++
		return nil
	}))

	errs := bus.Publish(ctx, Event{Type: ExecutionCompleted})
	require.Len(t, errs, 1)
	require.Equal(t, 1, delivered)
}
