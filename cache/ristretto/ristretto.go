// Package ristretto provides an in-process cache backed by
// github.com/dgraph-io/ristretto, implementing the client's Cache interface.
package ristretto

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto"
)

// Cache wraps a ristretto cache. Ristretto has no native prefix scan, so the
// live key set is tracked alongside it to support prefix invalidation.
type Cache struct {
	inner *ristretto.Cache

	mu   sync.Mutex
	keys map[string]struct{}
}

// Config controls the cache size.
type Config struct {
	// NumCounters is the number of frequency counters; roughly 10x the
	// expected number of entries.
	NumCounters int64
	// MaxCost is the maximum total size of cached values, in bytes.
	MaxCost int64
}

// New returns a cache with the given sizing, falling back to sensible small
// defaults for zero values.
func New(cfg Config) (*Cache, error) {
	if cfg.NumCounters == 0 {
		cfg.NumCounters = 1e5
	}
	if cfg.MaxCost == 0 {
		cfg.MaxCost = 64 << 20
	}
	inner, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner, keys: make(map[string]struct{})}, nil
}

// Get retrieves a value. A missing key returns nil, nil.
func (c *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := c.inner.Get(key)
	if !ok {
		return nil, nil
	}
	data, ok := v.([]byte)
	if !ok {
		return nil, nil
	}
	return data, nil
}

// Set stores a value with the given TTL; zero means no expiry.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl > 0 {
		c.inner.SetWithTTL(key, value, int64(len(value)), ttl)
	} else {
		c.inner.Set(key, value, int64(len(value)))
	}
	c.mu.Lock()
	c.keys[key] = struct{}{}
	c.mu.Unlock()
	return nil
}

// Delete removes a single key.
func (c *Cache) Delete(_ context.Context, key string) error {
	c.inner.Del(key)
	c.mu.Lock()
	delete(c.keys, key)
	c.mu.Unlock()
	return nil
}

// DeletePrefix removes all keys with the given prefix.
func (c *Cache) DeletePrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	for key := range c.keys {
		if strings.HasPrefix(key, prefix) {
			c.inner.Del(key)
			delete(c.keys, key)
		}
	}
	c.mu.Unlock()
	return nil
}

// Clear removes all keys.
func (c *Cache) Clear(_ context.Context) error {
	c.inner.Clear()
	c.mu.Lock()
	c.keys = make(map[string]struct{})
	c.mu.Unlock()
	return nil
}

// Close releases the cache resources.
func (c *Cache) Close() {
	c.inner.Close()
}

// Wait blocks until pending writes are applied. Intended for tests, where
// ristretto's asynchronous admission would otherwise race reads.
func (c *Cache) Wait() {
	c.inner.Wait()
}
