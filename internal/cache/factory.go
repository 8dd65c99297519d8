package cache

import (
	"fmt"
	"io"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ppiankov/injurywire/internal/model"
)

// NewSeenStore builds the seen store selected by the dedup backend.
// Stores holding connections implement io.Closer.
func NewSeenStore(dedup model.DedupConfig, redisCfg model.RedisConfig, ttl time.Duration) (SeenStore, error) {
	backend := strings.ToLower(dedup.Backend)

	switch backend {
	case "", "memory":
		return NewMemoryStore(ttl, 10*time.Minute), nil

	case "disk":
		if dedup.Dir == "" {
			return nil, fmt.Errorf("dedup backend disk requires dedup.dir")
		}
		return NewDiskStore(dedup.Dir), nil

	case "redis":
		return NewRedisStore(newRedisClient(redisCfg)), nil

	case "layered":
		return NewLayeredStore(ttl, NewRedisStore(newRedisClient(redisCfg))), nil

	default:
		return nil, fmt.Errorf("unknown dedup backend: %s (supported: memory, disk, redis, layered)", dedup.Backend)
	}
}

func newRedisClient(cfg model.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// Close closes the shared layer if it holds a connection
func (s *LayeredStore) Close() error {
	if c, ok := s.shared.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
