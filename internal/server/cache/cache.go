// Package cache memoizes computed lookup responses for the HTTP server.
// It wraps patrickmn/go-cache for TTL-based expiry.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache holds computed responses keyed by route and query.
type Cache struct {
	store *gocache.Cache
}

// New creates a cache whose entries expire after ttl. Expired entries are
// purged every cleanup interval.
func New(ttl, cleanup time.Duration) *Cache {
	return &Cache{store: gocache.New(ttl, cleanup)}
}

// Get retrieves a value.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.SetDefault(key, value)
}

// Remember returns the cached value for key, computing and storing it on a
// miss. Errors are returned and not cached.
func (c *Cache) Remember(key string, fn func() (any, error)) (any, error) {
	if v, ok := c.store.Get(key); ok {
		return v, nil
	}
	v, err := fn()
	if err != nil {
		return nil, err
	}
	c.store.SetDefault(key, v)
	return v, nil
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of entries, including expired ones not yet
// purged.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}
