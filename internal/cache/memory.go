package cache

import (
	"sync"
	"time"
)

type item struct {
	data      []byte
	expiresAt time.Time
}

type MemoryCache struct {
	items map[string]item
	mu    sync.Mutex
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]item),
		now:   time.Now,
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}

	if c.now().After(item.expiresAt) {
		delete(c.items, key)
		return nil, false
	}

	return item.data, true
}

func (c *MemoryCache) Set(key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = item{
		data:      data,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]item)
	return nil
}

// Prune drops expired entries and returns how many were removed.
func (c *MemoryCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, it := range c.items {
		if now.After(it.expiresAt) {
			delete(c.items, key)
			removed++
		}
	}
	return removed
}

func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
