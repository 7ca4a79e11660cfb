package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// MemoryWindowStore keeps sliding-window timestamps in process memory.
// State is per instance and resets on restart.
type MemoryWindowStore struct {
	mu      sync.Mutex
	entries map[string][]time.Time
}

// NewMemoryWindowStore returns an empty in-process store.
func NewMemoryWindowStore() *MemoryWindowStore {
	return &MemoryWindowStore{entries: make(map[string][]time.Time)}
}

// Admit prunes expired timestamps and records now when budget remains.
func (s *MemoryWindowStore) Admit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (bool, time.Time, error) {
	if s == nil {
		return false, time.Time{}, errors.New("store is not initialized")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return false, time.Time{}, errors.New("key is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.pruneLocked(key, now, window)
	if len(kept) >= limit {
		return false, kept[0], nil
	}
	s.entries[key] = append(kept, now)
	return true, time.Time{}, nil
}

// Usage counts timestamps younger than window.
func (s *MemoryWindowStore) Usage(ctx context.Context, key string, now time.Time, window time.Duration) (int, error) {
	if s == nil {
		return 0, errors.New("store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.pruneLocked(strings.TrimSpace(key), now, window)), nil
}

// Reset drops all timestamps for key.
func (s *MemoryWindowStore) Reset(ctx context.Context, key string) error {
	if s == nil {
		return errors.New("store is not initialized")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, strings.TrimSpace(key))
	return nil
}

// Name identifies the backend.
func (s *MemoryWindowStore) Name() string {
	return "memory"
}

func (s *MemoryWindowStore) pruneLocked(key string, now time.Time, window time.Duration) []time.Time {
	if s.entries == nil {
		s.entries = make(map[string][]time.Time)
	}
	current := s.entries[key]
	kept := current[:0]
	for _, ts := range current {
		if now.Sub(ts) < window {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(s.entries, key)
		return nil
	}
	s.entries[key] = kept
	return kept
}
