// Package cache provides the TTL result cache shared by the news adapters,
// the ticker resolver and the summarizer.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/newsdesk/internal/common"
)

// Backend is an optional second-level store consulted on a local miss.
// Errors are treated as misses. Get reports the remaining lifetime of the value, zero when it has no expiry.
type Backend interface {
	Get(ctx context.Context, key string) (value []byte, remaining time.Duration, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type entry struct {
	value     any
	expiresAt time.Time // zero means never
}

// Cache is an in-memory TTL cache with per-key single-flight fetches.
// Expired entries are dropped lazily on read and by Sweep.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	group   singleflight.Group
	backend Backend
	logger  *common.Logger
	now     func() time.Time
}

// Option configures a Cache
type Option func(*Cache)

// WithBackend sets a second-level backend
func WithBackend(b Backend) Option {
	return func(c *Cache) {
		c.backend = b
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// New creates an empty cache
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) set(key string, value any, ttl time.Duration) {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

// Delete removes a key
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, including expired ones not yet swept
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep removes expired entries and returns how many were removed
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// GetOrFetch returns the cached value for key, or calls fetch and caches its result for ttl.
// Concurrent callers for the same key share one fetch. Fetch errors are returned and not cached.
// A ttl of zero keeps the value for the life of the cache.
//
// The fetch runs detached from the caller's cancellation so that other waiters are not failed
// by one caller going away; fetch must bound its own duration.
func GetOrFetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	if v, ok := c.get(key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}

	ch := c.group.DoChan(key, func() (any, error) {
		fctx := context.WithoutCancel(ctx)

		// another flight may have filled the key between the read above and this one starting
		if v, ok := c.get(key); ok {
			if t, ok := v.(T); ok {
				return t, nil
			}
		}

		if t, remaining, ok := loadFromBackend[T](fctx, c, key); ok {
			c.set(key, t, backendTTL(ttl, remaining))
			return t, nil
		}

		v, err := fetch(fctx)
		if err != nil {
			return nil, err
		}

		c.set(key, v, ttl)
		storeToBackend(fctx, c, key, v, ttl)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		t, ok := res.Val.(T)
		if !ok {
			c.logger.Error().Str("key", key).Msgf("Cache key holds %T, caller expects %T", res.Val, zero)
			return zero, fmt.Errorf("cache key %s holds %T, not %T", key, res.Val, zero)
		}
		return t, nil
	}
}

// backendTTL keeps a value loaded from the backend no longer than the backend itself would
func backendTTL(ttl, remaining time.Duration) time.Duration {
	if remaining > 0 && (ttl <= 0 || remaining < ttl) {
		return remaining
	}
	return ttl
}

func loadFromBackend[T any](ctx context.Context, c *Cache, key string) (T, time.Duration, bool) {
	var t T
	if c.backend == nil {
		return t, 0, false
	}

	data, remaining, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Str("key", key).Err(err).Msg("Cache backend read failed, treating as miss")
		return t, 0, false
	}
	if !ok {
		return t, 0, false
	}

	if err := json.Unmarshal(data, &t); err != nil {
		c.logger.Warn().Str("key", key).Err(err).Msg("Cache backend value undecodable, treating as miss")
		return t, 0, false
	}
	return t, remaining, true
}

func storeToBackend(ctx context.Context, c *Cache, key string, v any, ttl time.Duration) {
	if c.backend == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Str("key", key).Err(err).Msg("Cache value not encodable for backend")
		return
	}
	if err := c.backend.Set(ctx, key, data, ttl); err != nil {
		c.logger.Warn().Str("key", key).Err(err).Msg("Cache backend write failed")
	}
}
