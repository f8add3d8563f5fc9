// Package kv abstracts the key-value counter store: get, put with TTL,
// delete, best-effort consistency. Backed by Redis in production and by an
// in-process map in tests.
package kv

import (
	"context"
	"time"
)

type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Put stores value under key. A zero ttl means no expiry.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
