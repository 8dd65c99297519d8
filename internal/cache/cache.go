package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// DefaultPrefix namespaces seen-hash keys in shared stores
const DefaultPrefix = "injurywire:seen:"

// SeenStore records which content hashes have already been processed
type SeenStore interface {
	// Exists reports whether key is currently marked
	Exists(ctx context.Context, key string) (bool, error)

	// MarkSeen atomically marks key for ttl if it is not already marked.
	// It returns true when this call created the mark.
	MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// FileName maps an arbitrary key to a filesystem-safe name
func FileName(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}
