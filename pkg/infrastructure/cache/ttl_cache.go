package cache

import (
	"sync"
	"time"
)

type cacheEntry[V any] struct {
	value    V
	expires  time.Time
	accessAt int64
}

// Config controls cache bounds and expiry.
type Config struct {
	// MaxEntries limits cache size; when exceeded, the least recently used
	// entries are evicted. Zero means a default of 1024.
	MaxEntries int
	// TTL is how long an entry stays valid after Set.
	TTL time.Duration
	// Now supplies the clock; nil means time.Now. Tests inject a fake clock
	// here to drive expiry deterministically.
	Now func() time.Time
}

// TTLCache is a bounded map of request-shaped keys to cached values with
// per-entry expiry. It is an explicit, injected dependency rather than
// module-level state, so callers control its lifetime and tests control time.
type TTLCache[K comparable, V any] struct {
	mu         sync.Mutex
	entries    map[K]*cacheEntry[V]
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
	tick       int64
}

// NewTTLCache creates a cache from the given config.
func NewTTLCache[K comparable, V any](cfg Config) *TTLCache[K, V] {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1024
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TTLCache[K, V]{
		entries:    make(map[K]*cacheEntry[V]),
		maxEntries: cfg.MaxEntries,
		ttl:        cfg.TTL,
		now:        cfg.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.expires) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	c.tick++
	e.accessAt = c.tick
	return e.value, true
}

// Set stores a value under key, evicting stale and least recently used
// entries as needed to stay within bounds.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tick++
	c.entries[key] = &cacheEntry[V]{
		value:    value,
		expires:  c.now().Add(c.ttl),
		accessAt: c.tick,
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	// Drop expired entries first; if still over bound, evict by least
	// recent access until back within it.
	now := c.now()
	for k, e := range c.entries {
		if now.After(e.expires) {
			delete(c.entries, k)
		}
	}
	for len(c.entries) > c.maxEntries {
		var oldestKey K
		oldestAccess := int64(-1)
		for k, e := range c.entries {
			if oldestAccess < 0 || e.accessAt < oldestAccess {
				oldestAccess = e.accessAt
				oldestKey = k
			}
		}
		delete(c.entries, oldestKey)
	}
}

// Delete removes a single entry.
func (c *TTLCache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of entries currently stored, expired or not.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
