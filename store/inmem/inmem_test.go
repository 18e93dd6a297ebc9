package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sandboxptc/ptc/store"
)

func TestRecordAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	started := time.Now().Add(-2 * time.Second)
	rec := store.Record{
		ExecutionID:   "exec-1",
		StartedAt:     started,
		CompletedAt:   started.Add(time.Second),
		ToolCallCount: 3,
		Success:       true,
	}
	require.NoError(t, s.Record(ctx, rec))

	got, ok, err := s.Get(ctx, "exec-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3, got.ToolCallCount)
	require.Equal(t, time.Second, got.Duration())
}

func TestGetMissing(t *testing.T) {
	s := New()
	_, ok, err := s.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRecordOverwritesSameExecution(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, store.Record{ExecutionID: "exec-1", Success: false, Error: "timeout"}))
	require.NoError(t, s.Record(ctx, store.Record{ExecutionID: "exec-1", Success: true}))

	got, ok, err := s.Get(ctx, "exec-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, got.Success)
	require.Empty(t, got.Error)
}
