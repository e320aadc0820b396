// Package cache provides a bounded, time-expiring store for generated
// responses, keyed on normalized query text.
package cache

import (
	"strings"
	"sync"
	"time"
)

const (
	// maxKeyLength caps the normalized query used as a cache key.
	maxKeyLength = 100

	DefaultCapacity = 100
	DefaultTTL      = time.Hour
)

type entry struct {
	response  string
	createdAt time.Time
	hits      int
}

// Cache is a fixed-capacity response cache with FIFO-by-age eviction and lazy
// TTL expiry confirmed on read. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries:  make(map[string]*entry, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Key normalizes query text into a cache key: lowercased, whitespace
// collapsed, capped at 100 characters.
func Key(query string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(query)), " ")
	if len(normalized) > maxKeyLength {
		normalized = normalized[:maxKeyLength]
	}
	return normalized
}

// Get returns the cached response for the query if present and younger than
// the TTL. Expired entries are removed on read rather than swept.
func (c *Cache) Get(query string) (string, bool) {
	key := Key(query)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}

	if c.now().Sub(e.createdAt) >= c.ttl {
		delete(c.entries, key)
		return "", false
	}

	e.hits++
	return e.response, true
}

// Put stores the response for the query. At capacity, the single globally
// oldest entry by insertion time is evicted first, regardless of hits.
func (c *Cache) Put(query, response string) {
	key := Key(query)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}

	c.entries[key] = &entry{response: response, createdAt: c.now()}
}

func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time

	for key, e := range c.entries {
		if oldestKey == "" || e.createdAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = e.createdAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Len reports the number of stored entries, counting expired ones that have
// not been touched since expiry.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
