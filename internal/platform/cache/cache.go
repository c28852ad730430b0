// Package cache provides the cache port used for response caching and
// invalidation, with Redis and in-memory backends.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with TTLs and prefix deletion.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeleteByPrefix removes every key starting with prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Nop is a Cache that stores nothing. Used when caching is disabled.
type Nop struct{}

func (Nop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Nop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Nop) Delete(context.Context, ...string) error { return nil }

func (Nop) DeleteByPrefix(context.Context, string) error { return nil }
