package cache

import (
	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local cache. go-cache guards its map with a mutex,
// so concurrent fetchers can share one instance.
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a memory cache with no expiration and no janitor
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(gocache.NoExpiration, 0),
	}
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		if b, ok := val.([]byte); ok {
			return b, true
		}
	}
	return nil, false
}

// Set stores a value in the cache
func (c *MemoryCache) Set(key string, value []byte) error {
	c.cache.Set(key, value, gocache.NoExpiration)
	return nil
}

// Len reports the number of cached entries
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}
