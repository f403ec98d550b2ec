package cache

import (
	"sync"
	"time"
)

// TTLCache is a small in-process cache for hot read endpoints. Entries
// expire lazily on read, plus a periodic sweep so abandoned keys do not
// accumulate between reads.
type TTLCache struct {
	mu      sync.RWMutex
	items   map[string]item
	lastGC  time.Time
	gcEvery time.Duration
}

type item struct {
	value    any
	deadline int64 // unix nanos, 0 means no expiry
}

func NewTTLCache() *TTLCache {
	return &TTLCache{
		items:   make(map[string]item),
		gcEvery: time.Minute,
	}
}

func (c *TTLCache) Get(key string) (any, bool) {
	now := time.Now().UnixNano()
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || (it.deadline != 0 && now > it.deadline) {
		return nil, false
	}
	return it.value, true
}

func (c *TTLCache) Set(key string, v any, ttl time.Duration) {
	var deadline int64
	if ttl > 0 {
		deadline = time.Now().Add(ttl).UnixNano()
	}
	c.mu.Lock()
	c.items[key] = item{value: v, deadline: deadline}
	c.maybeSweepLocked()
	c.mu.Unlock()
}

func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

func (c *TTLCache) maybeSweepLocked() {
	now := time.Now()
	if now.Sub(c.lastGC) < c.gcEvery {
		return
	}
	c.lastGC = now
	nanos := now.UnixNano()
	for k, it := range c.items {
		if it.deadline != 0 && nanos > it.deadline {
			delete(c.items, k)
		}
	}
}
