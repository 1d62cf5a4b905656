// Package cache defines the response cache contract shared by the
// in-process and Redis tiers. Values are opaque serialized responses;
// keys come from the keys package and embed the catalog generation, so
// a catalog swap never serves stale entries.
package cache

import (
	"context"
	"time"
)

type Interface interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
