package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores cache values in Redis under a key prefix
type RedisBackend struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisBackend connects to the Redis instance at url and verifies it with a ping.
// Bare host:port addresses are accepted as well as redis:// URLs.
func NewRedisBackend(ctx context.Context, url, prefix string) (*RedisBackend, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		opt = &redis.Options{Addr: url}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opt.Addr, err)
	}

	return NewRedisBackendFromClient(client, prefix), nil
}

// NewRedisBackendFromClient wraps an existing client
func NewRedisBackendFromClient(client redis.UniversalClient, prefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: prefix}
}

// Get returns the stored bytes and their remaining TTL, with ok=false when the key is absent
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, time.Duration, bool, error) {
	var get *redis.StringCmd
	var pttl *redis.DurationCmd
	_, err := b.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.Get(ctx, b.prefix+key)
		pttl = pipe.PTTL(ctx, b.prefix+key)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, err
	}

	data, err := get.Bytes()
	if err != nil {
		return nil, 0, false, err
	}

	// PTTL reports -1 for no expiry
	remaining := pttl.Val()
	if remaining < 0 {
		remaining = 0
	}
	return data, remaining, true, nil
}

// Set stores value with the given ttl; zero keeps it without expiry
func (b *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.client.Set(ctx, b.prefix+key, value, ttl).Err()
}

// Close closes the underlying client
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
