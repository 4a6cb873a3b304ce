package cache

import (
	"errors"
	"time"
)

// LayeredCache reads through a chain of caches, fastest first. A hit in a
// slower layer is copied into the faster ones.
type LayeredCache struct {
	layers []Cache
}

// NewLayeredCache puts memory in front of disk. An empty diskDir makes it memory only.
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	c := &LayeredCache{layers: []Cache{NewMemoryCache(memoryTTL, 10*time.Minute)}}
	if diskDir != "" {
		c.layers = append(c.layers, NewDiskCache(diskDir, diskTTL))
	}
	return c
}

// Get returns the first hit, backfilling the layers above it with their default TTL
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	for i, layer := range c.layers {
		val, found := layer.Get(key)
		if !found {
			continue
		}
		for _, above := range c.layers[:i] {
			_ = above.Set(key, val, 0)
		}
		return val, true
	}
	return nil, false
}

// Set writes every layer; failures are joined
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	var errs []error
	for _, layer := range c.layers {
		errs = append(errs, layer.Set(key, value, ttl))
	}
	return errors.Join(errs...)
}

// Delete removes the key from every layer
func (c *LayeredCache) Delete(key string) error {
	var errs []error
	for _, layer := range c.layers {
		errs = append(errs, layer.Delete(key))
	}
	return errors.Join(errs...)
}

// Clear empties every layer
func (c *LayeredCache) Clear() error {
	var errs []error
	for _, layer := range c.layers {
		errs = append(errs, layer.Clear())
	}
	return errors.Join(errs...)
}

// Prune drops expired entries from the persistent layers
func (c *LayeredCache) Prune() (int, error) {
	total := 0
	for _, layer := range c.layers {
		p, ok := layer.(Pruner)
		if !ok {
			continue
		}
		n, err := p.Prune()
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
