package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/common/metrics"
)

const memoryBackend = "memory"

type memoryEntry struct {
	value     []byte
	createdAt time.Time
}

// MemoryCache is a process-local TTL cache with a hard size cap. When full,
// expired entries are purged first and then the oldest entry is evicted.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	logger  logger.Logger

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	expired   atomic.Uint64
}

// MemoryOption customizes a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

func NewMemoryCache(ttl time.Duration, maxSize int, log logger.Logger, opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		logger:  log.With(map[string]interface{}{"component": "response-cache", "backend": memoryBackend}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		metrics.CacheOperations.WithLabelValues(memoryBackend, "get", "miss").Inc()
		return nil, false
	}

	if c.isExpired(entry, c.now()) {
		delete(c.entries, key)
		c.expired.Add(1)
		c.misses.Add(1)
		metrics.CacheOperations.WithLabelValues(memoryBackend, "get", "expired").Inc()
		metrics.CacheEntries.WithLabelValues(memoryBackend).Set(float64(len(c.entries)))
		return nil, false
	}

	c.hits.Add(1)
	metrics.CacheOperations.WithLabelValues(memoryBackend, "get", "hit").Inc()
	return entry.value, true
}

func (c *MemoryCache) Put(_ context.Context, key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		purged := c.purgeLocked(now)
		if len(c.entries) >= c.maxSize {
			c.evictOldestLocked()
		}
		if purged > 0 {
			c.logger.Debug("Purged expired entries before insert", map[string]interface{}{"purged": purged})
		}
	}

	stored := make([]byte, len(value))
	copy(stored, value)
	c.entries[key] = memoryEntry{value: stored, createdAt: now}

	metrics.CacheOperations.WithLabelValues(memoryBackend, "put", "ok").Inc()
	metrics.CacheEntries.WithLabelValues(memoryBackend).Set(float64(len(c.entries)))
}

// PurgeExpired removes every entry older than the TTL and returns the count.
func (c *MemoryCache) PurgeExpired(_ context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	purged := c.purgeLocked(c.now())
	metrics.CacheEntries.WithLabelValues(memoryBackend).Set(float64(len(c.entries)))
	return purged
}

func (c *MemoryCache) Stats() Stats {
	c.mu.Lock()
	entries := len(c.entries)
	c.mu.Unlock()

	return Stats{
		Backend:   memoryBackend,
		Entries:   entries,
		MaxSize:   c.maxSize,
		TTL:       c.ttl,
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Expired:   c.expired.Load(),
	}
}

// Run sweeps expired entries every interval until ctx is done.
func (c *MemoryCache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.PurgeExpired(ctx); n > 0 {
				c.logger.Debug("Swept expired cache entries", map[string]interface{}{"purged": n})
			}
		}
	}
}

func (c *MemoryCache) isExpired(entry memoryEntry, now time.Time) bool {
	return c.ttl > 0 && now.Sub(entry.createdAt) >= c.ttl
}

func (c *MemoryCache) purgeLocked(now time.Time) int {
	purged := 0
	for key, entry := range c.entries {
		if c.isExpired(entry, now) {
			delete(c.entries, key)
			purged++
		}
	}
	if purged > 0 {
		c.expired.Add(uint64(purged))
		metrics.CacheOperations.WithLabelValues(memoryBackend, "purge", "expired").Add(float64(purged))
	}
	return purged
}

func (c *MemoryCache) evictOldestLocked() {
	var (
		oldestKey string
		oldestAt  time.Time
		found     bool
	)
	for key, entry := range c.entries {
		if !found || entry.createdAt.Before(oldestAt) {
			oldestKey, oldestAt, found = key, entry.createdAt, true
		}
	}
	if found {
		delete(c.entries, oldestKey)
		c.evictions.Add(1)
		metrics.CacheOperations.WithLabelValues(memoryBackend, "evict", "oldest").Inc()
	}
}
