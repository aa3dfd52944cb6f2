// Package cache provides the in-memory TTL cache shared by the resource
// loader and the handoff memory store.
package cache

import (
	"sync"
	"time"
)

// Cache is a minimal TTL cache.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V, ttl time.Duration)
	Delete(key K)
	// Take returns the value and removes it in one step.
	Take(key K) (V, bool)
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e cacheEntry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// TTLCache stores values in memory with per-entry TTLs. A zero TTL never expires.
type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]cacheEntry[V]
	now   func() time.Time
}

// NewTTLCache constructs an empty TTLCache.
func NewTTLCache[K comparable, V any]() *TTLCache[K, V] {
	return &TTLCache[K, V]{items: make(map[K]cacheEntry[V]), now: time.Now}
}

// Get returns a cached value if it exists and has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}
	if entry.expired(c.now()) {
		c.Delete(key)
		return zero, false
	}
	return entry.value, true
}

// Set stores a value with the provided TTL.
func (c *TTLCache[K, V]) Set(key K, value V, ttl time.Duration) {
	if c == nil {
		return
	}
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = cacheEntry[V]{value: value, expiresAt: expiresAt}
	c.mu.Unlock()
}

// Delete removes a cached entry.
func (c *TTLCache[K, V]) Delete(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}

// Take returns the live value for key and removes it. Concurrent takers of
// the same key see the value at most once.
func (c *TTLCache[K, V]) Take(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	entry, ok := c.items[key]
	delete(c.items, key)
	c.mu.Unlock()
	if !ok || entry.expired(c.now()) {
		return zero, false
	}
	return entry.value, true
}

// Len returns the number of stored entries, expired ones included.
func (c *TTLCache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Sweep drops every expired entry and returns how many were removed.
func (c *TTLCache[K, V]) Sweep() int {
	if c == nil {
		return 0
	}
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.items {
		if e.expired(now) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

// NoopCache always returns cache misses and ignores writes.
type NoopCache[K comparable, V any] struct{}

// Get always returns a miss.
func (NoopCache[K, V]) Get(key K) (V, bool) {
	var zero V
	return zero, false
}

// Set is a no-op.
func (NoopCache[K, V]) Set(key K, value V, ttl time.Duration) {}

// Delete is a no-op.
func (NoopCache[K, V]) Delete(key K) {}

// Take always returns a miss.
func (NoopCache[K, V]) Take(key K) (V, bool) {
	var zero V
	return zero, false
}
