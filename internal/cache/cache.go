// Package cache implements the in-process object cache: a two-level map
// from entity type to a bounded LRU of entity id -> cached aggregate.
package cache

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry wraps one cached aggregate with its bookkeeping times.
type Entry struct {
	Value      any
	InsertedAt time.Time
	LastAccess time.Time
}

// Cache is the per-type bounded object cache. All operations run under a
// single mutex; no I/O happens while it is held.
type Cache struct {
	mu         sync.Mutex
	capPerType int
	types      map[string]*lru.Cache[string, *Entry]
	hits       uint64
	misses     uint64
}

// New returns a cache capped at capPerType entries per entity type.
// Caps below 1 are raised to 1.
func New(capPerType int) *Cache {
	if capPerType < 1 {
		capPerType = 1
	}
	return &Cache{
		capPerType: capPerType,
		types:      make(map[string]*lru.Cache[string, *Entry]),
	}
}

// Put inserts or replaces an aggregate. When the per-type cache is full
// the least recently used entry is evicted.
func (c *Cache) Put(entityType, id string, value any) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.forType(entityType).Add(id, &Entry{Value: value, InsertedAt: now, LastAccess: now})
}

// Get returns the cached aggregate and whether it was present. A hit
// refreshes the entry's recency and last-access time.
func (c *Cache) Get(entityType, id string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.types[entityType]
	if !ok {
		c.misses++
		return nil, false
	}
	e, ok := t.Get(id)
	if !ok {
		c.misses++
		return nil, false
	}
	e.LastAccess = time.Now()
	c.hits++
	return e.Value, true
}

// Contains reports presence without counting a hit or refreshing recency.
func (c *Cache) Contains(entityType, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.types[entityType]
	return ok && t.Contains(id)
}

// Remove evicts one entry. Removing an absent entry is a no-op.
func (c *Cache) Remove(entityType, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.types[entityType]; ok {
		t.Remove(id)
	}
}

// Clear drops every entry of every type.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = make(map[string]*lru.Cache[string, *Entry])
}

// ClearType drops every entry of one type.
func (c *Cache) ClearType(entityType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.types, entityType)
}

// Size reports the total number of cached entries across types.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, t := range c.types {
		total += t.Len()
	}
	return total
}

// SizeForType reports the number of cached entries of one type.
func (c *Cache) SizeForType(entityType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.types[entityType]; ok {
		return t.Len()
	}
	return 0
}

// Resize changes the per-type cap, shrinking existing per-type caches by
// evicting their least recently used entries.
func (c *Cache) Resize(capPerType int) {
	if capPerType < 1 {
		capPerType = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capPerType = capPerType
	for _, t := range c.types {
		t.Resize(capPerType)
	}
}

// Counters returns the cumulative hit and miss counts.
func (c *Cache) Counters() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// forType returns the LRU for one entity type, creating it on first use.
// Caller holds c.mu.
func (c *Cache) forType(entityType string) *lru.Cache[string, *Entry] {
	t, ok := c.types[entityType]
	if !ok {
		// lru.New only fails for a non-positive size, which the
		// constructor rules out.
		t, _ = lru.New[string, *Entry](c.capPerType)
		c.types[entityType] = t
	}
	return t
}
