package dedupe

import (
	"sync"
	"time"
)

type entry struct {
	url string
	ts  time.Time
}

// Cache remembers source URLs processed inside a ttl window. It sits in
// front of the storage lookup so repeated cycles skip the round-trip for
// recently seen URLs; storage remains the authoritative dedup check.
type Cache struct {
	mu       sync.Mutex
	urls     map[string]time.Time
	order    []entry
	capacity int
	ttl      time.Duration
}

// NewCache creates a cache with the provided capacity and ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		urls:     make(map[string]time.Time, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Seen returns true when the URL was marked inside the ttl window.
// It does not mark; use Mark after the item is persisted.
func (c *Cache) Seen(url string) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if ts, ok := c.urls[url]; ok && now.Sub(ts) <= c.ttl {
		return true
	}
	return false
}

// Mark records that a source URL has been processed.
func (c *Cache) Mark(url string) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.urls[url] = now
	c.order = append(c.order, entry{url: url, ts: now})
	c.compact(now)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.urls) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		if ts, ok := c.urls[oldest.url]; ok && ts == oldest.ts {
			delete(c.urls, oldest.url)
		}
	}
}
