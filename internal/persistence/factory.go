package persistence

import (
	"context"
	"fmt"
)

// Options selects and configures a backend.
type Options struct {
	// Type is one of "memory", "file", "s3", "sqlite".
	Type string
	// Dir is the base directory for the file backend.
	Dir string
	// Path is the database file for the sqlite backend.
	Path string
	// Bucket, Prefix, and KMSKeyID configure the s3 backend.
	Bucket   string
	Prefix   string
	KMSKeyID string
}

// New builds a Backend from options.
func New(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Type {
	case "", "memory":
		return NewMemoryBackend(), nil
	case "file":
		if opts.Dir == "" {
			return nil, fmt.Errorf("file backend requires a directory")
		}
		return NewFileBackend(opts.Dir)
	case "sqlite":
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite backend requires a database path")
		}
		return NewSQLiteBackend(opts.Path)
	case "s3":
		if opts.Bucket == "" {
			return nil, fmt.Errorf("s3 backend requires a bucket")
		}
		return NewS3Backend(ctx, opts.Bucket, opts.Prefix, opts.KMSKeyID)
	default:
		return nil, fmt.Errorf("unknown persistence backend: %s", opts.Type)
	}
}
