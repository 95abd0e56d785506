// Package cache is the read-through cache in front of the catalog
// backend. The in-memory backend is the default; redis keeps the
// catalog warm across restarts when configured.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}
