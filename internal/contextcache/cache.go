// Package contextcache caches extraction and retrieval results keyed by
// question, index state, and model so repeated queries skip the LLM
// entirely.
package contextcache

import (
	"context"
	"errors"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("contextcache: miss")

// Cache is the contract shared by all backends. A ttlSeconds of 0 means no
// expiry (or the backend default where native TTLs exist). Clear removes
// only entries owned by this cache instance.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Invalidate(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
