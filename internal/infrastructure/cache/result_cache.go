// Package cache implements the in-process result cache: recently computed
// per-player results keyed by identity, bounded by an idle TTL, with at
// most one concurrent computation per key. A second concurrent request for
// the same key awaits the first's result instead of triggering a duplicate
// fetch+merge+score pipeline.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the idle lifetime of a cached result.
const DefaultTTL = 10 * time.Minute

// entry stores one computed value with explicit TTL metadata. Eviction is
// driven by the metadata, never by garbage collection timing.
type entry[T any] struct {
	value      T
	lastAccess time.Time
}

// Cache is a keyed single-flight cache with an idle TTL. Eviction is
// advisory: a stale entry simply triggers recomputation on the next
// access, it never invalidates readers that already hold the value.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]*entry[T]
	ttl     time.Duration
	group   singleflight.Group
}

// New creates a cache with the given idle TTL. Non-positive TTLs fall back
// to DefaultTTL.
func New[T any](ttl time.Duration) *Cache[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache[T]{
		entries: make(map[string]*entry[T]),
		ttl:     ttl,
	}
}

// GetOrCompute returns the cached value for key, computing it at most once
// across all concurrent callers when absent or stale.
func (c *Cache[T]) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// A racing caller may have stored the value between the fast
		// path and the flight start.
		if v, ok := c.get(key); ok {
			return v, nil
		}

		v, err := compute(ctx)
		if err != nil {
			var zero T
			return zero, err
		}
		c.set(key, v)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the entry for key, forcing recomputation on next access.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Sweep removes entries idle past the TTL and returns how many were
// evicted. Meant to be called from a periodic job.
func (c *Cache[T]) Sweep() int {
	cutoff := time.Now().Add(-c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	var evicted int
	for key, e := range c.entries {
		if e.lastAccess.Before(cutoff) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the current number of entries.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache[T]) get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero T
		return zero, false
	}
	if time.Since(e.lastAccess) > c.ttl {
		delete(c.entries, key)
		var zero T
		return zero, false
	}

	e.lastAccess = time.Now()
	return e.value, true
}

func (c *Cache[T]) set(key string, value T) {
	c.mu.Lock()
	c.entries[key] = &entry[T]{value: value, lastAccess: time.Now()}
	c.mu.Unlock()
}
