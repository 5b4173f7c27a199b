package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"survey-intelligence/internal/common/logger"
	"survey-intelligence/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const redisBackend = "redis"

// RedisCache stores entries in Redis with a native expiry. It lets several
// service instances share completions; Redis unavailability degrades to misses.
type RedisCache struct {
	client  redis.Cmdable
	prefix  string
	ttl     time.Duration
	maxSize int
	logger  logger.Logger

	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewRedisCache(client redis.Cmdable, prefix string, ttl time.Duration, maxSize int, log logger.Logger) *RedisCache {
	return &RedisCache{
		client:  client,
		prefix:  prefix,
		ttl:     ttl,
		maxSize: maxSize,
		logger:  log.With(map[string]interface{}{"component": "response-cache", "backend": redisBackend}),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		c.misses.Add(1)
		if errors.Is(err, redis.Nil) {
			metrics.CacheOperations.WithLabelValues(redisBackend, "get", "miss").Inc()
			return nil, false
		}
		metrics.CacheOperations.WithLabelValues(redisBackend, "get", "error").Inc()
		c.logger.Warn("Redis cache read failed", map[string]interface{}{"error": err.Error()})
		return nil, false
	}

	c.hits.Add(1)
	metrics.CacheOperations.WithLabelValues(redisBackend, "get", "hit").Inc()
	return val, true
}

func (c *RedisCache) Put(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		metrics.CacheOperations.WithLabelValues(redisBackend, "put", "error").Inc()
		c.logger.Warn("Redis cache write failed", map[string]interface{}{"error": err.Error()})
		return
	}
	metrics.CacheOperations.WithLabelValues(redisBackend, "put", "ok").Inc()
}

// PurgeExpired is a no-op: Redis expires keys itself.
func (c *RedisCache) PurgeExpired(_ context.Context) int {
	return 0
}

func (c *RedisCache) Stats() Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	entries := 0
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		entries++
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("Redis cache scan failed", map[string]interface{}{"error": err.Error()})
	}
	metrics.CacheEntries.WithLabelValues(redisBackend).Set(float64(entries))

	return Stats{
		Backend: redisBackend,
		Entries: entries,
		MaxSize: c.maxSize,
		TTL:     c.ttl,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
