// Package cache provides a small generic in-memory cache with optional
// expiry.
package cache

import (
	"sync"
	"time"
)

// Cache is a read-through key/value store.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Delete(key K)
	Clear()
	Size() int
}

// InMemoryCache is a mutex-guarded in-memory cache. A zero ttl disables
// expiry entirely: entries live for the lifetime of the cache and no cleanup
// goroutine is started. That mode backs the per-token market metadata
// (tick size, neg-risk flag, fee rate), which is immutable per client.
type InMemoryCache[K comparable, V any] struct {
	items map[K]*cacheItem[V]
	mu    sync.RWMutex
	ttl   time.Duration
}

type cacheItem[V any] struct {
	value     V
	expiresAt time.Time
}

func NewInMemoryCache[K comparable, V any](ttl time.Duration) *InMemoryCache[K, V] {
	c := &InMemoryCache[K, V]{
		items: make(map[K]*cacheItem[V]),
		ttl:   ttl,
	}
	if ttl > 0 {
		go c.startCleanup()
	}
	return c
}

// Get returns the cached value. Expired entries read as missing even before
// the cleanup pass removes them.
func (c *InMemoryCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		var zero V
		return zero, false
	}
	if c.ttl > 0 && time.Now().After(item.expiresAt) {
		var zero V
		return zero, false
	}
	return item.value, true
}

func (c *InMemoryCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := &cacheItem[V]{value: value}
	if c.ttl > 0 {
		item.expiresAt = time.Now().Add(c.ttl)
	}
	c.items[key] = item
}

func (c *InMemoryCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func (c *InMemoryCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]*cacheItem[V])
}

func (c *InMemoryCache[K, V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *InMemoryCache[K, V]) startCleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

func (c *InMemoryCache[K, V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, key)
		}
	}
}
