// Package cache provides the in-memory response cache used to short-circuit
// auth bootstrap passes and to memoize lazily loaded page modules. Entries
// are immutable once inserted and are only ever evicted by TTL expiry or
// explicit invalidation; there is no size bound.
package cache

import (
	"sync"
	"time"
)

// Default TTLs. Auth state goes stale quickly so repeated bootstrap passes
// stay cheap without trusting old sessions; loaded page modules are safe to
// keep much longer.
const (
	AuthStateTTL  = 2 * time.Minute
	PageModuleTTL = 15 * time.Minute
)

// entry is a value plus its insertion timestamp.
type entry struct {
	value      any
	insertedAt time.Time
}

// Cache is a TTL-bounded key/value store. The zero value is not usable;
// construct with New.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]entry
	now     func() time.Time
}

// New creates a cache whose entries expire ttl after insertion.
func New(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// SetClock overrides the cache's time source. Only used by tests.
func (c *Cache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Put stores value under key, replacing any previous entry wholesale.
func (c *Cache) Put(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, insertedAt: c.now()}
}

// Get returns the value stored under key if it has not expired. An expired
// entry is evicted on the spot and reported as absent.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Invalidate removes key regardless of age.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Reset drops every entry. Used on sign-out and form reset.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Len returns the number of entries currently held, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
