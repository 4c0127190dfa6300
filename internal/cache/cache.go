// Package cache stores upstream responses keyed by request URL so each feed
// is hit at most once per TTL.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Get returns the stored bytes and whether the key was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}
