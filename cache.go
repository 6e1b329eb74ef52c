package gallerydb

import (
	"context"
	"time"
)

// Cache is the interface for read-through caching of unique lookups.
// Implementations may be backed by any store; the cache/ristretto package
// provides an in-process one.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies a cached unique lookup. Keys are prefixed with the
// table name so mutations can invalidate a whole table with DeletePrefix.
type CacheKey struct {
	Table     string
	Operation string
	Filter    string
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Table + ":" + k.Operation + ":" + k.Filter
}
