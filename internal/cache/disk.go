package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DiskStore persists seen marks as files so separate runs on one host
// share state. Creation uses O_EXCL so two processes cannot both win.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a new disk store rooted at dir
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

type markEntry struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// diskNow is the disk store clock; overridden in tests
var diskNow = time.Now

// Exists reports whether an unexpired mark file exists for key
func (s *DiskStore) Exists(ctx context.Context, key string) (bool, error) {
	entry, err := s.read(key)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return diskNow().Before(entry.ExpiresAt), nil
}

// MarkSeen creates the mark file for key. An expired mark is removed and
// creation retried once.
func (s *DiskStore) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return false, fmt.Errorf("create seen dir: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		created, err := s.create(key, ttl)
		if err != nil {
			return false, err
		}
		if created {
			return true, nil
		}

		entry, err := s.read(key)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return false, err
		}
		if diskNow().Before(entry.ExpiresAt) {
			return false, nil
		}
		if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("remove expired mark: %w", err)
		}
	}
	return false, nil
}

func (s *DiskStore) create(key string, ttl time.Duration) (bool, error) {
	f, err := os.OpenFile(s.path(key), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create mark: %w", err)
	}

	data, err := json.Marshal(markEntry{Key: key, ExpiresAt: diskNow().Add(ttl)})
	if err != nil {
		_ = f.Close()
		return false, fmt.Errorf("marshal mark: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write mark: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close mark: %w", err)
	}
	return true, nil
}

func (s *DiskStore) read(key string) (markEntry, error) {
	var entry markEntry
	path := s.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	if len(data) == 0 || json.Unmarshal(data, &entry) != nil {
		// Another process is between create and write. Unreadable marks
		// expire a minute after their last write.
		info, statErr := os.Stat(path)
		if statErr != nil {
			return entry, statErr
		}
		entry.ExpiresAt = info.ModTime().Add(time.Minute)
	}
	return entry, nil
}

// Clear removes all marks
func (s *DiskStore) Clear() error {
	return os.RemoveAll(s.dir)
}

// path generates the file path for a key
func (s *DiskStore) path(key string) string {
	return filepath.Join(s.dir, FileName(key)+".seen")
}
