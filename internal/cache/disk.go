package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fileSuffix = ".verdict"

// DiskCache persists verdicts across runs, one JSON file per key
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache creates a disk cache in dir; ttl applies when Set is given zero
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl, now: time.Now}
}

// diskEntry is the file format. Key is stored so a file renamed or shared
// between keys after sanitizing never answers for the wrong key.
type diskEntry struct {
	Key       string    `json:"key"`
	StoredAt  time.Time `json:"stored_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Data      []byte    `json:"data"`
}

func (e diskEntry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Get returns the stored value. Expired entries are removed.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)
	entry, err := readEntry(path)
	if err != nil || entry.Key != key {
		return nil, false
	}
	if entry.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false
	}
	return entry.Data, true
}

// Set stores value for ttl, or for the cache default when ttl is zero
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	now := c.now()
	data, err := json.Marshal(diskEntry{
		Key:       key,
		StoredAt:  now.UTC(),
		ExpiresAt: now.Add(ttl).UTC(),
		Data:      value,
	})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	return writeAtomic(c.dir, c.path(key), data)
}

// Delete removes a value; deleting a missing key is not an error
func (c *DiskCache) Delete(key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every verdict file. Other files in the directory are left alone.
func (c *DiskCache) Clear() error {
	files, err := c.files()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove cache file: %w", err)
		}
	}
	return nil
}

// Prune removes expired and unreadable verdict files and reports how many went
func (c *DiskCache) Prune() (int, error) {
	files, err := c.files()
	if err != nil {
		return 0, err
	}
	now := c.now()
	removed := 0
	for _, f := range files {
		entry, err := readEntry(f)
		if err == nil && !entry.expired(now) {
			continue
		}
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("remove cache file: %w", err)
		}
		removed++
	}
	return removed, nil
}

// Dir returns the cache directory
func (c *DiskCache) Dir() string {
	return c.dir
}

func (c *DiskCache) files() ([]string, error) {
	return filepath.Glob(filepath.Join(c.dir, "*"+fileSuffix))
}

// path maps a key to its file. The common prefix is dropped and characters
// that some filesystems reject are replaced.
func (c *DiskCache) path(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, strings.TrimPrefix(key, keyPrefix))
	return filepath.Join(c.dir, name+fileSuffix)
}

func readEntry(path string) (diskEntry, error) {
	var entry diskEntry
	data, err := os.ReadFile(path)
	if err != nil {
		return entry, err
	}
	err = json.Unmarshal(data, &entry)
	return entry, err
}

// writeAtomic replaces path so readers never see a partial entry
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}
