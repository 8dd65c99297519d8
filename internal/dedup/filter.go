package dedup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ppiankov/injurywire/internal/cache"
	"github.com/ppiankov/injurywire/internal/model"
)

// TTL is how long a content hash stays registered. Items older than this
// window are treated as new.
const TTL = 24 * time.Hour

// Hash is a stable digest of source, normalized content and timestamp
func Hash(source, content, timestamp string) string {
	h := sha256.New()
	h.Write([]byte(strings.TrimSpace(source)))
	h.Write([]byte{'|'})
	h.Write([]byte(normalize(content)))
	h.Write([]byte{'|'})
	h.Write([]byte(strings.TrimSpace(timestamp)))
	return hex.EncodeToString(h.Sum(nil))
}

// normalize lowercases and collapses whitespace
func normalize(content string) string {
	return strings.Join(strings.Fields(strings.ToLower(content)), " ")
}

// KeyOf returns the item's dedup key, computing it when absent
func KeyOf(item model.RawItem) string {
	if item.DedupKey != "" {
		return item.DedupKey
	}
	return Hash(item.Source, item.Text, item.PublishedAt)
}

// Filter is a "seen before" gate over a SeenStore
type Filter struct {
	store  cache.SeenStore
	prefix string
	logger *log.Logger
}

// NewFilter creates a filter. An empty prefix uses cache.DefaultPrefix.
func NewFilter(store cache.SeenStore, prefix string, logger *log.Logger) *Filter {
	if prefix == "" {
		prefix = cache.DefaultPrefix
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Filter{
		store:  store,
		prefix: prefix,
		logger: logger.WithPrefix("dedup"),
	}
}

// IsDuplicate registers hash and reports whether it was already seen.
// Store failures are logged and the item treated as new.
func (f *Filter) IsDuplicate(ctx context.Context, hash string) bool {
	created, err := f.store.MarkSeen(ctx, f.prefix+hash, TTL)
	if err != nil {
		f.logger.Warn("seen store unavailable, treating item as new", "hash", hash, "err", err)
		return false
	}
	return !created
}

// Seen reports whether hash is registered without registering it
func (f *Filter) Seen(ctx context.Context, hash string) (bool, error) {
	return f.store.Exists(ctx, f.prefix+hash)
}
