// Package cache provides an in-memory TTL cache shared by the storefront infrastructure.
package cache

import (
	"sync"
	"time"
)

// Entry represents a cached value with expiration time
type Entry struct {
	Value     any
	ExpiresAt time.Time
}

// IsExpired checks if the entry has expired at now
func (e *Entry) IsExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Metrics tracks cache performance statistics
type Metrics struct {
	Hits       int64
	Misses     int64
	Evictions  int64
	TotalReads int64
	TotalSize  int64
}

// HitRate calculates the cache hit rate as a percentage
func (m *Metrics) HitRate() float64 {
	if m.TotalReads == 0 {
		return 0.0
	}
	return float64(m.Hits) / float64(m.TotalReads) * 100.0
}

// EvictFunc is called, outside the cache lock, for every entry removed by expiry or capacity.
type EvictFunc func(key string, value any)

// Option configures a Cache.
type Option func(*Cache)

// WithEvictFunc registers fn as the eviction callback.
func WithEvictFunc(fn EvictFunc) Option {
	return func(c *Cache) { c.onEvict = fn }
}

// WithSlidingExpiration makes every successful Get extend the entry's lifetime by the TTL.
func WithSlidingExpiration() Option {
	return func(c *Cache) { c.sliding = true }
}

// withClock replaces time.Now in tests.
func withClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// Cache provides thread-safe TTL-based caching with size limits and metrics
type Cache struct {
	entries map[string]*Entry
	ttl     time.Duration
	maxSize int
	sliding bool
	onEvict EvictFunc
	now     func() time.Time
	mu      sync.Mutex
	metrics Metrics
	stopCh  chan struct{}
	once    sync.Once
}

type evicted struct {
	key   string
	value any
}

// New creates a cache with the given TTL and maximum size, and starts its cleanup loop.
func New(ttl time.Duration, maxSize int, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*Entry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupLoop()

	return c
}

// Get retrieves a value from the cache, returning nil if not found or expired
func (c *Cache) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.TotalReads++

	now := c.now()
	entry, exists := c.entries[key]
	if !exists || entry.IsExpired(now) {
		c.metrics.Misses++
		return nil
	}

	if c.sliding {
		entry.ExpiresAt = now.Add(c.ttl)
	}
	c.metrics.Hits++
	return entry.Value
}

// Set stores a value in the cache with TTL expiration
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	var removed []evicted
	if _, replacing := c.entries[key]; !replacing && len(c.entries) >= c.maxSize {
		removed = c.evictExpiredLocked()
		if len(c.entries) >= c.maxSize {
			removed = append(removed, c.evictOldestLocked()...)
		}
	}

	c.entries[key] = &Entry{
		Value:     value,
		ExpiresAt: c.now().Add(c.ttl),
	}
	c.metrics.TotalSize = int64(len(c.entries))
	c.mu.Unlock()

	c.notify(removed)
}

// Delete removes a specific key from the cache without calling the eviction callback
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	c.metrics.TotalSize = int64(len(c.entries))
}

// Clear removes all entries from the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)
	c.metrics.TotalSize = 0
}

// Size returns the current number of entries in the cache
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Metrics returns a copy of the current cache metrics
func (c *Cache) Metrics() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// Close stops the background cleanup goroutine
func (c *Cache) Close() {
	c.once.Do(func() {
		close(c.stopCh)
	})
}

func (c *Cache) cleanupLoop() {
	interval := c.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCh:
			return
		}
	}
}

func (c *Cache) cleanup() {
	c.mu.Lock()
	removed := c.evictExpiredLocked()
	c.metrics.TotalSize = int64(len(c.entries))
	c.mu.Unlock()

	c.notify(removed)
}

func (c *Cache) notify(removed []evicted) {
	if c.onEvict == nil {
		return
	}
	for _, e := range removed {
		c.onEvict(e.key, e.value)
	}
}

// evictExpiredLocked must be called with the lock held
func (c *Cache) evictExpiredLocked() []evicted {
	var removed []evicted
	now := c.now()
	for key, entry := range c.entries {
		if entry.IsExpired(now) {
			removed = append(removed, evicted{key: key, value: entry.Value})
			delete(c.entries, key)
			c.metrics.Evictions++
		}
	}
	return removed
}

// evictOldestLocked removes the entry closest to expiry; must be called with the lock held
func (c *Cache) evictOldestLocked() []evicted {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.ExpiresAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.ExpiresAt
		}
	}

	if oldestKey == "" {
		return nil
	}
	value := c.entries[oldestKey].Value
	delete(c.entries, oldestKey)
	c.metrics.Evictions++
	return []evicted{{key: oldestKey, value: value}}
}
