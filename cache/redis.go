package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// opTimeout bounds individual Redis commands so a stalled memory server
// cannot hang the translation pipeline.
const opTimeout = 3 * time.Second

// RedisCache is a Redis-backed translation memory, suitable for sharing
// across processes. Lookups degrade to misses when the server is
// unreachable, so translation proceeds without the memory.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

var _ TranslationCache = (*RedisCache)(nil)

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string // Connection URL, e.g. "redis://localhost:6379"
	TTL       int    // Entry lifetime in seconds; 0 keeps entries forever
	KeyPrefix string // Namespace prefix, "loom:" when empty
}

// NewRedisCache connects to the server named by cfg.URL and verifies the
// connection with a ping before returning.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return NewRedisCacheFromClient(client, cfg.TTL, cfg.KeyPrefix), nil
}

// NewRedisCacheFromClient wraps an existing client, for callers that
// manage their own connection pool.
func NewRedisCacheFromClient(client *redis.Client, ttlSeconds int, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "loom:"
	}
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &RedisCache{client: client, ttl: ttl, prefix: keyPrefix}
}

func (c *RedisCache) key(k string) string { return c.prefix + k }

// Get looks up a translation. Any server error reads as a miss.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

// Set stores a translation under the configured TTL.
func (c *RedisCache) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return c.client.Set(ctx, c.key(key), value, c.ttl).Err()
}

// Ping checks the server connection.
func (c *RedisCache) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (c *RedisCache) Close() error { return c.client.Close() }
