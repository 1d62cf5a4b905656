package cache

import (
	"context"
	"time"
)

// Tiered reads through a small local tier before the shared remote one
// and backfills the local tier on remote hits. A nil tier is skipped, so
// a Tiered with only Remote set behaves like a plain remote cache.
type Tiered struct {
	Local  Interface
	Remote Interface

	// LocalTTL bounds how long an entry lives in the local tier. Zero
	// reuses the caller's TTL on writes.
	LocalTTL time.Duration
}

func (t *Tiered) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if t.Local != nil {
		if val, ok, err := t.Local.Get(ctx, key); err == nil && ok {
			return val, true, nil
		}
	}
	if t.Remote == nil {
		return nil, false, nil
	}
	val, ok, err := t.Remote.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	if t.Local != nil {
		_ = t.Local.Set(ctx, key, val, t.localTTL(0))
	}
	return val, true, nil
}

func (t *Tiered) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if t.Local != nil {
		if err := t.Local.Set(ctx, key, val, t.localTTL(ttl)); err != nil {
			return err
		}
	}
	if t.Remote == nil {
		return nil
	}
	return t.Remote.Set(ctx, key, val, ttl)
}

func (t *Tiered) Del(ctx context.Context, keys ...string) error {
	var first error
	if t.Local != nil {
		first = t.Local.Del(ctx, keys...)
	}
	if t.Remote != nil {
		if err := t.Remote.Del(ctx, keys...); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (t *Tiered) localTTL(fallback time.Duration) time.Duration {
	if t.LocalTTL > 0 {
		return t.LocalTTL
	}
	return fallback
}
