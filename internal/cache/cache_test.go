package cache

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/ppiankov/injurywire/internal/model"
)

func testStores(t *testing.T) map[string]SeenStore {
	t.Helper()
	return map[string]SeenStore{
		"memory":  NewMemoryStore(time.Hour, time.Minute),
		"disk":    NewDiskStore(t.TempDir()),
		"layered": NewLayeredStore(time.Hour, NewDiskStore(t.TempDir())),
	}
}

func TestSeenStore_MarkOnce(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			found, err := store.Exists(ctx, "k1")
			if err != nil || found {
				t.Fatalf("Expected k1 absent, got found=%v err=%v", found, err)
			}

			created, err := store.MarkSeen(ctx, "k1", time.Hour)
			if err != nil || !created {
				t.Fatalf("Expected first mark to create, got created=%v err=%v", created, err)
			}

			created, err = store.MarkSeen(ctx, "k1", time.Hour)
			if err != nil || created {
				t.Errorf("Expected second mark to report existing, got created=%v err=%v", created, err)
			}

			found, err = store.Exists(ctx, "k1")
			if err != nil || !found {
				t.Errorf("Expected k1 present, got found=%v err=%v", found, err)
			}
		})
	}
}

func TestSeenStore_ConcurrentMarkHasOneWinner(t *testing.T) {
	ctx := context.Background()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			var winners int32
			var wg sync.WaitGroup
			for i := 0; i < 32; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					created, err := store.MarkSeen(ctx, "race", time.Hour)
					if err != nil {
						t.Errorf("Unexpected error: %v", err)
						return
					}
					if created {
						atomic.AddInt32(&winners, 1)
					}
				}()
			}
			wg.Wait()

			if winners != 1 {
				t.Errorf("Expected exactly one winner, got %d", winners)
			}
		})
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour, time.Minute)

	if created, _ := store.MarkSeen(ctx, "short", 20*time.Millisecond); !created {
		t.Fatal("Expected mark to be created")
	}
	time.Sleep(40 * time.Millisecond)

	if found, _ := store.Exists(ctx, "short"); found {
		t.Error("Expected expired mark to be absent")
	}
	if created, _ := store.MarkSeen(ctx, "short", time.Hour); !created {
		t.Error("Expected expired key to be markable again")
	}
}

func TestDiskStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewDiskStore(t.TempDir())

	original := diskNow
	defer func() { diskNow = original }()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	diskNow = func() time.Time { return now }

	if created, err := store.MarkSeen(ctx, "k", 24*time.Hour); err != nil || !created {
		t.Fatalf("Expected mark created, got %v %v", created, err)
	}

	now = now.Add(25 * time.Hour)

	if found, _ := store.Exists(ctx, "k"); found {
		t.Error("Expected mark expired after TTL")
	}
	if created, err := store.MarkSeen(ctx, "k", 24*time.Hour); err != nil || !created {
		t.Errorf("Expected expired mark to be replaced, got %v %v", created, err)
	}
}

func TestDiskStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	if created, _ := NewDiskStore(dir).MarkSeen(ctx, "shared", time.Hour); !created {
		t.Fatal("Expected first instance to create mark")
	}
	if created, _ := NewDiskStore(dir).MarkSeen(ctx, "shared", time.Hour); created {
		t.Error("Expected second instance to see existing mark")
	}
}

func TestDiskStore_Clear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir() + "/seen"
	store := NewDiskStore(dir)

	_, _ = store.MarkSeen(ctx, "k", time.Hour)
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("Expected directory removed, got %v", err)
	}
}

func TestLayeredStore_SharedDecides(t *testing.T) {
	ctx := context.Background()
	shared := NewMemoryStore(time.Hour, time.Minute)

	// Another process already marked the key in the shared layer
	_, _ = shared.MarkSeen(ctx, "k", time.Hour)

	layered := NewLayeredStore(time.Hour, shared)
	if created, _ := layered.MarkSeen(ctx, "k", time.Hour); created {
		t.Error("Expected shared mark to win over empty memory layer")
	}
	if found, _ := layered.memory.Exists(ctx, "k"); !found {
		t.Error("Expected key promoted to memory layer")
	}
}

func TestLayeredStore_SharedError(t *testing.T) {
	ctx := context.Background()
	layered := NewLayeredStore(time.Hour, failingStore{})

	if _, err := layered.MarkSeen(ctx, "k", time.Hour); err == nil {
		t.Error("Expected shared error to surface")
	}
	if _, err := layered.Exists(ctx, "k"); err == nil {
		t.Error("Expected shared error to surface")
	}
	if err := layered.Close(); err != nil {
		t.Errorf("Expected nil close for non-closer shared store, got %v", err)
	}
}

func TestNewSeenStore(t *testing.T) {
	ttl := 24 * time.Hour

	tests := []struct {
		dedup   model.DedupConfig
		wantErr bool
		desc    string
	}{
		{dedup: model.DedupConfig{Backend: ""}, desc: "Empty defaults to memory"},
		{dedup: model.DedupConfig{Backend: "memory"}, desc: "Memory"},
		{dedup: model.DedupConfig{Backend: "disk", Dir: t.TempDir()}, desc: "Disk"},
		{dedup: model.DedupConfig{Backend: "disk"}, wantErr: true, desc: "Disk without dir"},
		{dedup: model.DedupConfig{Backend: "redis"}, desc: "Redis client is lazy"},
		{dedup: model.DedupConfig{Backend: "LAYERED"}, desc: "Layered, case-insensitive"},
		{dedup: model.DedupConfig{Backend: "memcached"}, wantErr: true, desc: "Unknown backend"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			store, err := NewSeenStore(tt.dedup, model.RedisConfig{Addr: "localhost:6379"}, ttl)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if store == nil {
				t.Fatal("Expected store")
			}
			if c, ok := store.(io.Closer); ok {
				_ = c.Close()
			}
		})
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("INJURYWIRE_TEST_REDIS")
	if addr == "" {
		t.Skip("INJURYWIRE_TEST_REDIS not set")
	}

	ctx := context.Background()
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: addr}))
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	key := DefaultPrefix + "test:" + time.Now().Format(time.RFC3339Nano)
	if created, err := store.MarkSeen(ctx, key, time.Minute); err != nil || !created {
		t.Fatalf("Expected first SETNX to create, got %v %v", created, err)
	}
	if created, err := store.MarkSeen(ctx, key, time.Minute); err != nil || created {
		t.Errorf("Expected second SETNX to report existing, got %v %v", created, err)
	}
	if found, err := store.Exists(ctx, key); err != nil || !found {
		t.Errorf("Expected key to exist, got %v %v", found, err)
	}
}

func TestFileName(t *testing.T) {
	a := FileName("injurywire:seen:abc")
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}
	if a != FileName("injurywire:seen:abc") {
		t.Error("Expected stable file name")
	}
	if a == FileName("injurywire:seen:abd") {
		t.Error("Expected different keys to map to different names")
	}
}

type failingStore struct{}

func (failingStore) Exists(ctx context.Context, key string) (bool, error) {
	return false, errors.New("connection refused")
}

func (failingStore) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return false, errors.New("connection refused")
}
