// Package cache keeps recent aggregation results in memory so repeated
// requests for the same seasons do not refetch every page.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/use-agent/footyscrape/models"
)

type entry struct {
	response  *models.ScrapeResponse
	createdAt time.Time
}

// Cache is an in-memory cache of scrape responses. It is safe for
// concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Cache holding at most maxEntries responses. Entries older
// than ttl are evicted by a background sweep running every ttl/6, clamped
// to between a second and a minute. Call Close to stop the sweep.
func New(maxEntries int, ttl time.Duration) *Cache {
	if maxEntries <= 0 {
		maxEntries = 100
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		stop:       make(chan struct{}),
	}

	go c.cleanupLoop(max(min(ttl/6, time.Minute), time.Second))
	return c
}

// Key derives a cache key from the ordered season sources, the layout and
// the dedupe flag. Source order matters because output order follows it.
func Key(sources []models.SeasonSource, layout string, dedupe bool) string {
	h := sha256.New()
	for _, s := range sources {
		h.Write([]byte(s.Label))
		h.Write([]byte{0})
		h.Write([]byte(strings.TrimSpace(s.URL)))
		h.Write([]byte{'|'})
	}
	h.Write([]byte(layout))
	if dedupe {
		h.Write([]byte("|dedupe"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns a cached response younger than maxAgeMs milliseconds and the
// cache TTL. maxAgeMs <= 0 disables the lookup.
func (c *Cache) Get(key string, maxAgeMs int) (*models.ScrapeResponse, bool) {
	if maxAgeMs <= 0 {
		return nil, false
	}

	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	maxAge := min(time.Duration(maxAgeMs)*time.Millisecond, c.ttl)
	if time.Since(e.createdAt) > maxAge {
		return nil, false
	}
	return e.response, true
}

// Set stores a response. At capacity one random entry is evicted first.
func (c *Cache) Set(key string, resp *models.ScrapeResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists && len(c.store) >= c.maxEntries {
		// map iteration order is random
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		response:  resp,
		createdAt: time.Now(),
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the background sweep.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.evictExpired(time.Now())
		}
	}
}

func (c *Cache) evictExpired(now time.Time) {
	cutoff := now.Add(-c.ttl)
	c.mu.Lock()
	for k, e := range c.store {
		if e.createdAt.Before(cutoff) {
			delete(c.store, k)
		}
	}
	c.mu.Unlock()
}
