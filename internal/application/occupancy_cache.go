package application

import (
	"maps"
	"sync"
	"time"

	"github.com/example/roomsync/internal/scheduler"
)

// occupancyCache stores resolved room occupancy per time context so that the
// many reads issued within one minute share a single resolution while the
// schedule is unchanged. Mutations call Invalidate, which also bumps the
// generation so results computed from entries read before the mutation are
// never stored.
type occupancyCache struct {
	mu         sync.RWMutex
	generation uint64
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[scheduler.TimeContext]occupancyCacheEntry
}

type occupancyCacheEntry struct {
	occupancy map[string]*scheduler.Entry
	expiresAt time.Time
}

func newOccupancyCache(ttl time.Duration, maxEntries int, now func() time.Time) *occupancyCache {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 64
	}
	if now == nil {
		now = time.Now
	}
	return &occupancyCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[scheduler.TimeContext]occupancyCacheEntry),
	}
}

// Get returns the occupancy cached for key when it belongs to generation.
func (c *occupancyCache) Get(key scheduler.TimeContext, generation uint64) (map[string]*scheduler.Entry, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	current := c.generation
	c.mu.RUnlock()
	if !ok || current != generation {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return maps.Clone(entry.occupancy), true
}

// Generation identifies the current schedule version. Read it before loading
// the entries a result is computed from and pass it to Store.
func (c *occupancyCache) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Store saves occupancy computed at generation. The write is dropped when the
// cache was invalidated since.
func (c *occupancyCache) Store(key scheduler.TimeContext, generation uint64, occupancy map[string]*scheduler.Entry) bool {
	if c == nil {
		return false
	}
	cloned := maps.Clone(occupancy)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		return false
	}

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = occupancyCacheEntry{occupancy: cloned, expiresAt: expiry}
	return true
}

func (c *occupancyCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.generation++
	c.entries = make(map[scheduler.TimeContext]occupancyCacheEntry)
	c.mu.Unlock()
}

func (c *occupancyCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *occupancyCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *occupancyCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}
