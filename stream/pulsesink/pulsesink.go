// Package pulsesink implements stream.Sink on top of goa.design/pulse
// streams backed by Redis, for deployments that want execution lifecycle
// events fanned out to a UI or another observer process rather than
// discarded in-process.
package pulsesink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"goa.design/pulse/streaming"
	streamopts "goa.design/pulse/streaming/options"

	"github.com/sandboxptc/ptc/stream"
)

// Options configures a Sink.
type Options struct {
	// Redis is the connection backing the Pulse stream. Required.
	Redis *redis.Client
	// StreamName names the Pulse stream events are published to.
	// Defaults to "ptc:executions" when empty.
	StreamName string
	// StreamMaxLen bounds the number of entries retained per stream. Zero
	// uses Pulse's default.
	StreamMaxLen int
	// TTL, when non-zero, is re-applied to the underlying Redis key after
	// every publish so abandoned execution streams expire.
	TTL time.Duration
}

// Sink publishes stream.Event values as Pulse stream entries.
type Sink struct {
	stream *streaming.Stream
	rdb    *redis.Client
	key    string
	ttl    time.Duration
}

// New constructs a Sink. Returns an error if opts.Redis is nil or stream
// creation fails.
func New(opts Options) (*Sink, error) {
	if opts.Redis == nil {
		return nil, errors.New("pulsesink: redis client is required")
	}
	name := opts.StreamName
	if name == "" {
		name = "ptc:executions"
	}
	var streamOpts []streamopts.Stream
	if opts.StreamMaxLen > 0 {
		streamOpts = append(streamOpts, streamopts.WithStreamMaxLen(opts.StreamMaxLen))
	}
	str, err := streaming.NewStream(name, opts.Redis, streamOpts...)
	if err != nil {
		return nil, fmt.Errorf("pulsesink: create stream: %w", err)
	}
	return &Sink{stream: str, rdb: opts.Redis, key: "pulse:stream:" + name, ttl: opts.TTL}, nil
}

// Send implements stream.Sink.
func (s *Sink) Send(ctx context.Context, event stream.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("pulsesink: marshal event: %w", err)
	}
	if _, err := s.stream.Add(ctx, string(event.Type), payload); err != nil {
		return fmt.Errorf("pulsesink: add event: %w", err)
	}
	if s.ttl > 0 {
		if err := s.rdb.Expire(ctx, s.key, s.ttl).Err(); err != nil {
			return fmt.Errorf("pulsesink: set ttl: %w", err)
		}
	}
	return nil
}

// Close implements stream.Sink by destroying the underlying Pulse stream.
func (s *Sink) Close(ctx context.Context) error {
	return s.stream.Destroy(ctx)
}
