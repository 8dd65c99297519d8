package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is an in-process seen store with no cross-run persistence
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a new memory store
func NewMemoryStore(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Exists reports whether key is marked and unexpired
func (s *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, found := s.cache.Get(key)
	return found, nil
}

// MarkSeen marks key unless it is already present. go-cache's Add holds the
// cache lock across check and insert.
func (s *MemoryStore) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := s.cache.Add(key, struct{}{}, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// Len returns the number of marked keys, including expired ones not yet purged
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
