// Package inmem implements an in-process store.Recorder, the default used
// when no external recorder is configured.
package inmem

import (
	"context"
	"sync"

	"github.com/sandboxptc/ptc/store"
)

// Store is a mutex-protected in-memory execution ledger.
type Store struct {
	mu      sync.RWMutex
	records map[string]store.Record
}

// New constructs an empty Store.
func New() *Store {
	return &Store{records: make(map[string]store.Record)}
}

// Record implements store.Recorder.
func (s *Store) Record(ctx context.Context, rec store.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ExecutionID] = rec
	return nil
}

// Get implements store.Recorder. Record is a plain value type, so the
// returned copy is already isolated from further mutation of the store.
func (s *Store) Get(ctx context.Context, executionID string) (store.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[executionID]
	return rec, ok, nil
}
