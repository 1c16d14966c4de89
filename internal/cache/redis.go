package cache

import (
	"context"
	"crypto/tls"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares probe results between processes via Redis
type RedisCache struct {
	client *redis.Client
	prefix string
}

// RedisConfig configures the Redis cache
type RedisConfig struct {
	Addr     string // Redis address (e.g., "localhost:6379")
	Password string // Redis password (empty for no auth)
	DB       int    // Redis database number
	Prefix   string // Key prefix (default: "wphmr:")
	UseTLS   bool   // Enable TLS connection
}

// NewRedisCache connects and pings the server before returning.
func NewRedisCache(config RedisConfig) (*RedisCache, error) {
	opts := &redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	}

	// Enable TLS if configured
	if config.UseTLS {
		opts.TLSConfig = &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return newRedisCache(client, config.Prefix), nil
}

func newRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = "wphmr:"
	}
	return &RedisCache{client: client, prefix: prefix}
}

// Get reads "1"/"0". Any Redis error, including a missing key, is a miss.
func (rc *RedisCache) Get(ctx context.Context, key string) (bool, bool) {
	val, err := rc.client.Get(ctx, rc.prefix+key).Result()
	if err != nil {
		return false, false
	}
	return val == "1", true
}

func (rc *RedisCache) Set(ctx context.Context, key string, value bool, ttl time.Duration) {
	val := "0"
	if value {
		val = "1"
	}
	if ttl < 0 {
		ttl = 0
	}
	rc.client.Set(ctx, rc.prefix+key, val, ttl)
}

func (rc *RedisCache) Delete(ctx context.Context, key string) {
	rc.client.Del(ctx, rc.prefix+key)
}

// Clear removes all prefixed keys from cache
func (rc *RedisCache) Clear() {
	ctx := context.Background()
	pattern := rc.prefix + "*"
	var cursor uint64
	for {
		keys, nextCursor, err := rc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			break
		}

		if len(keys) > 0 {
			rc.client.Del(ctx, keys...)
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
}

// Close closes the Redis connection
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
