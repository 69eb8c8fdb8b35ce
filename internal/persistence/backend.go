// Package persistence provides a key to JSON blob store used for document
// indexes, checkpoints, and as the substrate under the object-store cache
// backend.
package persistence

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Load when the key does not exist.
var ErrNotFound = errors.New("persistence: key not found")

// Backend is a flat key-value store for JSON payloads. Keys are opaque
// strings mapped onto each backend's addressing scheme. Payloads round-trip
// byte for byte.
type Backend interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
}
