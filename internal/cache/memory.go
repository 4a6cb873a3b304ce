package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps verdicts for the life of the process
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a memory cache; expired items are swept every cleanupInterval
func NewMemoryCache(defaultTTL time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(defaultTTL, cleanupInterval)}
}

// Get returns a copy of the stored value
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.items.Get(key)
	if !found {
		return nil, false
	}
	b, ok := val.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

// Set stores a copy of value. A zero ttl uses the default expiration and a
// negative one stores nothing.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	switch {
	case ttl < 0:
		c.items.Delete(key)
	case ttl == 0:
		c.items.Set(key, append([]byte(nil), value...), gocache.DefaultExpiration)
	default:
		c.items.Set(key, append([]byte(nil), value...), ttl)
	}
	return nil
}

// Delete removes a value
func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

// Clear removes all values
func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len returns the number of cached items, expired ones included until the next sweep
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}
