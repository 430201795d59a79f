package ypath

import "sync"

// Cache memoizes parse results. Implementations must be safe for concurrent
// use; a bounded cache can be substituted without changing parse results.
type Cache interface {
	Load(key string) (Path, bool)
	Store(key string, p Path)
}

// MemoryCache is an append-only map guarded by a RWMutex. Entries are never
// evicted.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]Path
}

func NewCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]Path)}
}

func (c *MemoryCache) Load(key string) (Path, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.entries[key]
	return p, ok
}

func (c *MemoryCache) Store(key string, p Path) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; !ok {
		c.entries[key] = p
	}
}

// Len reports the number of cached keys.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(sep Separator, text string) string {
	return sep.String() + text
}
