package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Cache is a content-addressed byte store. Entries are immutable once written
// and are never expired by the cache itself.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// CacheKey generates a cache key from a URL
func CacheKey(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "regscout:v1:" + hex.EncodeToString(hash[:])
}

// New returns a memory+disk cache rooted at dir, or a memory-only cache when dir is empty
func New(dir string) Cache {
	if dir == "" {
		return NewMemoryCache()
	}
	return NewLayeredCache(dir)
}
