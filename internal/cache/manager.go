package cache

import (
	"context"
	"sync"
	"time"
)

// CacheType selects the Store backend.
type CacheType string

const (
	CacheTypeLocal CacheType = "local"
	CacheTypeRedis CacheType = "redis"
)

// Store is a key-value store with per-entry TTL for the dev server probe
// results. A stored false is a real entry and is reported as found.
type Store interface {
	Get(ctx context.Context, key string) (value bool, found bool)
	Set(ctx context.Context, key string, value bool, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Clear()
}

// CacheConfig configures NewCache.
type CacheConfig struct {
	Type          CacheType `mapstructure:"type"`
	RedisAddr     string    `mapstructure:"redis_addr"`
	RedisPassword string    `mapstructure:"redis_password"`
	RedisDB       int       `mapstructure:"redis_db"`
	RedisTLS      bool      `mapstructure:"redis_tls"`
	RedisPrefix   string    `mapstructure:"redis_prefix"`
}

type entry struct {
	value     bool
	expiresAt time.Time
}

// LocalCache is an in-memory Store. Expired entries are dropped lazily on read.
type LocalCache struct {
	entries map[string]entry
	lock    sync.RWMutex
	now     func() time.Time
}

// NewLocalCache creates an empty in-memory cache
func NewLocalCache() *LocalCache {
	return &LocalCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (lc *LocalCache) WithClock(now func() time.Time) *LocalCache {
	lc.now = now
	return lc
}

func (lc *LocalCache) Get(_ context.Context, key string) (bool, bool) {
	lc.lock.RLock()
	e, ok := lc.entries[key]
	lc.lock.RUnlock()
	if !ok {
		return false, false
	}
	if !e.expiresAt.IsZero() && !lc.now().Before(e.expiresAt) {
		lc.lock.Lock()
		if cur, still := lc.entries[key]; still && cur == e {
			delete(lc.entries, key)
		}
		lc.lock.Unlock()
		return false, false
	}
	return e.value, true
}

// Set stores value; ttl <= 0 means no expiry.
func (lc *LocalCache) Set(_ context.Context, key string, value bool, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = lc.now().Add(ttl)
	}
	lc.lock.Lock()
	defer lc.lock.Unlock()
	lc.entries[key] = e
}

func (lc *LocalCache) Delete(_ context.Context, key string) {
	lc.lock.Lock()
	defer lc.lock.Unlock()
	delete(lc.entries, key)
}

// Clear removes all cached data
func (lc *LocalCache) Clear() {
	lc.lock.Lock()
	lc.entries = make(map[string]entry)
	lc.lock.Unlock()
}

// Len reports the number of entries, expired ones included.
func (lc *LocalCache) Len() int {
	lc.lock.RLock()
	defer lc.lock.RUnlock()
	return len(lc.entries)
}

// NewCache creates a cache based on the config
func NewCache(config CacheConfig) (Store, error) {
	switch config.Type {
	case CacheTypeRedis:
		return NewRedisCache(RedisConfig{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
			UseTLS:   config.RedisTLS,
			Prefix:   config.RedisPrefix,
		})
	case CacheTypeLocal, "":
		return NewLocalCache(), nil
	default:
		return NewLocalCache(), nil
	}
}
