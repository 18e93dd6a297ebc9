// Package redisstore implements store.Recorder on top of Redis, for
// deployments that want the execution ledger to survive host process
// restarts and be shared across host instances.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sandboxptc/ptc/store"
)

// Store persists execution Records as JSON values in Redis.
type Store struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// Options configures a Store.
type Options struct {
	// Redis is the connection backing the store. Required.
	Redis *redis.Client
	// KeyPrefix namespaces record keys. Defaults to "ptc:execution:".
	KeyPrefix string
	// TTL, when non-zero, is applied to each record key so the ledger
	// self-prunes.
	TTL time.Duration
}

// New constructs a Store. Returns an error if opts.Redis is nil.
func New(opts Options) (*Store, error) {
	if opts.Redis == nil {
		return nil, errors.New("redisstore: redis client is required")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "ptc:execution:"
	}
	return &Store{rdb: opts.Redis, prefix: prefix, ttl: opts.TTL}, nil
}

func (s *Store) key(executionID string) string {
	return s.prefix + executionID
}

// Record implements store.Recorder.
func (s *Store) Record(ctx context.Context, rec store.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redisstore: marshal record: %w", err)
	}
	key := s.key(rec.ExecutionID)
	if err := s.rdb.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: set record: %w", err)
	}
	return nil
}

// Get implements store.Recorder.
func (s *Store) Get(ctx context.Context, executionID string) (store.Record, bool, error) {
	raw, err := s.rdb.Get(ctx, s.key(executionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.Record{}, false, nil
	}
	if err != nil {
		return store.Record{}, false, fmt.Errorf("redisstore: get record: %w", err)
	}
	var rec store.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return store.Record{}, false, fmt.Errorf("redisstore: unmarshal record: %w", err)
	}
	return rec, true, nil
}
