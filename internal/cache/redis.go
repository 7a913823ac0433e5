package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs the cache with Redis. Every operation fails soft: if
// Redis is unreachable the store reports misses and drops writes, because
// the cache is an optimization, never a dependency.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to addr ("host:port"). The connection is probed
// once so a dead Redis is visible at startup, but the store is returned
// either way.
func NewRedisStore(addr string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis unreachable, cache will miss until it recovers", "addr", addr, "error", err)
	}

	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		slog.Debug("cache write dropped", "key", key, "error", err)
	}
}

func (s *RedisStore) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		slog.Debug("cache delete dropped", "key", key, "error", err)
	}
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
