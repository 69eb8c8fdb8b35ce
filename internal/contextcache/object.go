package contextcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apsscout/pagetree/internal/persistence"
)

// cachePrefix scopes cache entries in a shared blob store so Clear cannot
// touch persisted indexes.
const cachePrefix = "_cache/"

// envelope wraps a cached value with its expiry metadata, since blob stores
// have no native TTL.
type envelope struct {
	Value      json.RawMessage `json:"value"`
	CreatedAt  time.Time       `json:"created_at"`
	TTLSeconds int             `json:"ttl_seconds"`
}

func (e *envelope) expired(now time.Time) bool {
	return e.TTLSeconds > 0 && now.Sub(e.CreatedAt) >= time.Duration(e.TTLSeconds)*time.Second
}

// ObjectCache layers the cache contract over a persistence Backend, used
// for S3 or file-backed caches shared across processes. Expired entries are
// deleted when read.
type ObjectCache struct {
	backend persistence.Backend
	now     func() time.Time
}

func NewObjectCache(backend persistence.Backend) *ObjectCache {
	return &ObjectCache{backend: backend, now: time.Now}
}

func (c *ObjectCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.backend.Load(ctx, cachePrefix+key)
	if errors.Is(err, persistence.ErrNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("loading cache entry: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}
	if env.expired(c.now()) {
		_ = c.backend.Delete(ctx, cachePrefix+key)
		return nil, ErrMiss
	}
	return env.Value, nil
}

func (c *ObjectCache) Put(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	env := envelope{
		Value:      json.RawMessage(value),
		CreatedAt:  c.now(),
		TTLSeconds: ttlSeconds,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}
	return c.backend.Save(ctx, cachePrefix+key, data)
}

func (c *ObjectCache) Invalidate(ctx context.Context, key string) error {
	return c.backend.Delete(ctx, cachePrefix+key)
}

func (c *ObjectCache) Clear(ctx context.Context) error {
	keys, err := c.backend.ListKeys(ctx, cachePrefix)
	if err != nil {
		return fmt.Errorf("listing cache entries: %w", err)
	}
	for _, k := range keys {
		if err := c.backend.Delete(ctx, k); err != nil {
			return fmt.Errorf("deleting cache entry %s: %w", k, err)
		}
	}
	return nil
}
