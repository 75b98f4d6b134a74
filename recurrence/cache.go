package recurrence

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"
)

// CacheConfig holds configuration for the expansion cache.
type CacheConfig struct {
	TTL             time.Duration // how long entries stay valid
	MaxEntries      int           // maximum number of entries before eviction
	CleanupInterval time.Duration // how often expired entries are swept
}

// DefaultCacheConfig provides sensible defaults for window-query caching.
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

type cacheEntry struct {
	occurrences []Occurrence
	expiresAt   time.Time
	accessedAt  time.Time
}

// Cache memoizes window-query results per recurring entity. It wraps the
// Engine rather than living inside it: the engine stays stateless, and
// identical queries through the cache still observe identical results
// because entries are keyed on every expansion input.
type Cache struct {
	engine *Engine

	mu          sync.RWMutex
	entries     map[string]*cacheEntry
	ttl         time.Duration
	maxEntries  int
	stopCleanup chan struct{}
}

// NewCache wraps an engine with a query cache. A nil engine gets a default
// one.
func NewCache(engine *Engine, config CacheConfig) *Cache {
	if engine == nil {
		engine = NewEngine()
	}
	c := &Cache{
		engine:      engine,
		entries:     make(map[string]*cacheEntry),
		ttl:         config.TTL,
		maxEntries:  config.MaxEntries,
		stopCleanup: make(chan struct{}),
	}
	go c.cleanupLoop(config.CleanupInterval)
	return c
}

// OccurrencesInWindow is the cached equivalent of Engine.OccurrencesInWindow.
func (c *Cache) OccurrencesInWindow(rec *Recurring, windowStart, windowEnd time.Time, includeAnchor bool) []Occurrence {
	if rec == nil {
		return nil
	}
	key := cacheKey(rec, windowStart, windowEnd, includeAnchor)
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && now.Before(entry.expiresAt) {
		c.mu.Lock()
		entry.accessedAt = now
		c.mu.Unlock()
		return entry.occurrences
	}

	occurrences := c.engine.OccurrencesInWindow(rec, windowStart, windowEnd, includeAnchor)

	c.mu.Lock()
	c.entries[key] = &cacheEntry{
		occurrences: occurrences,
		expiresAt:   now.Add(c.ttl),
		accessedAt:  now,
	}
	if len(c.entries) > c.maxEntries {
		c.evict(now)
	}
	c.mu.Unlock()
	return occurrences
}

// cacheKey hashes every input that affects expansion.
func cacheKey(rec *Recurring, windowStart, windowEnd time.Time, includeAnchor bool) string {
	h := sha256.New()
	h.Write([]byte(rec.UID))
	if rec.Rule != nil {
		h.Write([]byte(rec.Rule.String()))
	}
	h.Write([]byte(rec.Start.Format(time.RFC3339Nano)))
	h.Write([]byte(rec.End.Format(time.RFC3339Nano)))
	for _, t := range rec.RDates {
		h.Write([]byte(t.Format(time.RFC3339Nano)))
	}
	for _, t := range rec.ExDates {
		h.Write([]byte(t.Format(time.RFC3339Nano)))
	}
	h.Write([]byte(windowStart.Format(time.RFC3339Nano)))
	h.Write([]byte(windowEnd.Format(time.RFC3339Nano)))
	if includeAnchor {
		h.Write([]byte{1})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// evict removes expired entries, then the least recently accessed entries
// until the cache is back under its limit. Caller holds the write lock.
func (c *Cache) evict(now time.Time) {
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
	if len(c.entries) <= c.maxEntries {
		return
	}
	type keyAccess struct {
		key        string
		accessedAt time.Time
	}
	byAccess := make([]keyAccess, 0, len(c.entries))
	for key, entry := range c.entries {
		byAccess = append(byAccess, keyAccess{key, entry.accessedAt})
	}
	sort.Slice(byAccess, func(i, j int) bool {
		return byAccess[i].accessedAt.Before(byAccess[j].accessedAt)
	})
	for _, ka := range byAccess[:len(c.entries)-c.maxEntries] {
		delete(c.entries, ka.key)
	}
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCacheConfig.CleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.evict(time.Now())
			c.mu.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine and drops all entries.
func (c *Cache) Close() {
	close(c.stopCleanup)
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}
