// Package cache provides an in-process TTL cache used for memoizing remote
// lookups such as host classification results.
package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// entry represents a cached value with its expiration time.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTLCache provides time-based caching with lazy expiration.
//
// Expired entries are dropped on access and during capacity eviction; there
// is no background sweeper, so the cache never owns a goroutine and needs no
// Close call. All advancement is driven by caller invocation.
type TTLCache[V any] struct {
	mu      sync.RWMutex
	items   map[string]entry[V]
	ttl     time.Duration
	maxSize int

	// Metrics
	hits   atomic.Int64
	misses atomic.Int64

	// Singleflight for GetOrLoad to prevent thundering herd
	group singleflight.Group
}

// DefaultTTL is the default cache TTL when an invalid value is provided.
const DefaultTTL = time.Minute

// DefaultMaxSize is the default maximum cache size when an invalid value is provided.
const DefaultMaxSize = 1000

// NewTTLCache creates a new TTL cache.
//
// Parameters:
//   - ttl: Time-to-live for cache entries. If <= 0, defaults to 1 minute.
//   - maxSize: Maximum number of entries. If <= 0, defaults to 1000.
func NewTTLCache[V any](ttl time.Duration, maxSize int) *TTLCache[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	return &TTLCache[V]{
		items:   make(map[string]entry[V]),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a value from cache
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V

	e, exists := c.items[key]
	if !exists {
		c.misses.Add(1)
		return zero, false
	}

	if time.Now().After(e.expiresAt) {
		c.misses.Add(1)
		return zero, false
	}

	c.hits.Add(1)
	return e.value, true
}

// Set stores a value in cache
func (c *TTLCache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Evict to make room if at capacity and the key is new
	if _, exists := c.items[key]; !exists && len(c.items) >= c.maxSize {
		c.evictOldest()
	}

	c.items[key] = entry[V]{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// GetOrLoad retrieves from cache or loads using the provided function.
//
// This method uses singleflight to prevent the "thundering herd" problem:
// when multiple goroutines request the same missing key simultaneously,
// only one will call the loader function, and the result is shared.
func (c *TTLCache[V]) GetOrLoad(key string, loader func() (V, error)) (V, error) {
	// Fast path: check if value exists in cache
	if val, ok := c.Get(key); ok {
		return val, nil
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Double-check after acquiring singleflight lock
		// (another goroutine may have populated the cache)
		if val, ok := c.Get(key); ok {
			return val, nil
		}

		val, err := loader()
		if err != nil {
			return val, err
		}

		c.Set(key, val)
		return val, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	return val.(V), nil
}

// Delete removes a key from the cache
func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all entries from the cache
func (c *TTLCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]entry[V])
	c.hits.Store(0)
	c.misses.Store(0)
}

// Stats returns cache hit/miss counters and the current size.
func (c *TTLCache[V]) Stats() (hits, misses int64, size int) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.hits.Load(), c.misses.Load(), len(c.items)
}

// Size returns current cache size
func (c *TTLCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest removes an entry to make room for a new one. Expired entries
// go first, then the entry closest to expiration. Callers must hold c.mu.
func (c *TTLCache[V]) evictOldest() {
	now := time.Now()

	for key, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, key)
			return
		}
	}

	var oldestKey string
	var oldestTime time.Time

	for key, e := range c.items {
		if oldestTime.IsZero() || e.expiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.expiresAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
	}
}
