package state

import (
	"context"
	"sync"
	"time"
)

// Store keeps the last successful run of each source. A zero time from
// GetLastRun means the source has never completed a run.
type Store interface {
	GetLastRun(ctx context.Context, sourceURL string) (time.Time, error)
	RecordRun(ctx context.Context, sourceURL string, t time.Time) error
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]time.Time),
	}
}

func (s *MemoryStore) GetLastRun(_ context.Context, sourceURL string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data[sourceURL], nil
}

func (s *MemoryStore) RecordRun(_ context.Context, sourceURL string, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sourceURL] = t.UTC()
	return nil
}
