package cache

import (
	"context"
	"time"
)

// LayeredStore fronts a shared store with a local memory layer. Keys seen
// locally short-circuit without a round trip.
type LayeredStore struct {
	memory *MemoryStore
	shared SeenStore
}

// NewLayeredStore creates a new layered store
func NewLayeredStore(memoryTTL time.Duration, shared SeenStore) *LayeredStore {
	return &LayeredStore{
		memory: NewMemoryStore(memoryTTL, 10*time.Minute),
		shared: shared,
	}
}

// Exists checks memory first, then the shared store
func (s *LayeredStore) Exists(ctx context.Context, key string) (bool, error) {
	if found, _ := s.memory.Exists(ctx, key); found {
		return true, nil
	}
	return s.shared.Exists(ctx, key)
}

// MarkSeen defers the atomic decision to the shared store
func (s *LayeredStore) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if found, _ := s.memory.Exists(ctx, key); found {
		return false, nil
	}

	created, err := s.shared.MarkSeen(ctx, key, ttl)
	if err != nil {
		return false, err
	}

	// Promote to memory whether or not this process won
	_, _ = s.memory.MarkSeen(ctx, key, ttl)
	return created, nil
}
