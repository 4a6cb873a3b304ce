// Package cache stores secondary-opinion verdicts so reruns over the same
// claim pairs do not repeat model calls.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/contradicta/internal/model"
)

const keyPrefix = "contradicta:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Pruner is a cache that can drop its expired entries
type Pruner interface {
	Prune() (int, error)
}

// VerdictKey builds the key of one opinion. The claim order does not matter.
func VerdictKey(provider, modelName string, suggested model.ConflictType, claimA, claimB string) string {
	pair := []string{normalizeClaim(claimA), normalizeClaim(claimB)}
	sort.Strings(pair)

	h := sha256.New()
	for _, part := range []string{provider, modelName, string(suggested), pair[0], pair[1]} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

func normalizeClaim(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// GetJSON decodes a cached value into v; a missing or undecodable entry is a miss
func GetJSON(c Cache, key string, v any) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON encodes v and stores it
func SetJSON(c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(key, data, ttl)
}

// New builds the verdict cache from configuration: memory in front of disk.
// It returns nil when caching is disabled. An empty dir selects the user cache directory;
// when none can be determined the cache is memory only.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	dir := cfg.Dir
	if dir == "" {
		if base, err := os.UserCacheDir(); err == nil {
			dir = filepath.Join(base, "contradicta")
		}
	}
	return NewLayeredCache(cfg.MemoryTTL, dir, cfg.DiskTTL)
}
