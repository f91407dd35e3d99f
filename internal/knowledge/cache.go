package knowledge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wolfman30/support-agent-router/pkg/logging"
)

// BodyCache stores document bodies keyed by object key and ETag.
type BodyCache interface {
	Get(ctx context.Context, key, etag string) ([]byte, bool)
	Set(ctx context.Context, key, etag string, body []byte)
}

// RedisCache is a BodyCache backed by Redis. Failures are logged and treated as misses.
type RedisCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisCache {
	if client == nil {
		panic("knowledge: redis client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisCache{redis: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key, etag string) ([]byte, bool) {
	data, err := c.redis.Get(ctx, cacheKey(key, etag)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("document cache read failed", "error", err, "key", key)
		}
		return nil, false
	}
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key, etag string, body []byte) {
	if err := c.redis.Set(ctx, cacheKey(key, etag), body, c.ttl).Err(); err != nil {
		c.logger.Warn("document cache write failed", "error", err, "key", key)
	}
}

func cacheKey(key, etag string) string {
	return fmt.Sprintf("kb:doc:%s:%s", etag, key)
}
