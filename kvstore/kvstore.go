// Package kvstore is the small key-value store behind the cache layer. It
// lives apart from the main database so cache traffic never touches wardrobe
// records.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"wardrobeapi/config"
)

var (
	ErrNotFound      = errors.New("kvstore: key not found")
	ErrQuotaExceeded = errors.New("kvstore: storage quota exceeded")
	ErrUnavailable   = errors.New("kvstore: storage unavailable")
)

// Store holds opaque values by key. Every write replaces the previous value
// of its key as a whole.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New opens the backend selected by cfg.KVBackend. Opening an existing
// store is safe.
func New(cfg *config.Config) (Store, error) {
	switch cfg.KVBackend {
	case "sqlite":
		return NewSQLite(cfg.KVPath, cfg.KVMaxBytes)
	case "memory":
		return NewMemory(cfg.KVMaxBytes)
	case "redis":
		return NewRedis(cfg.RedisAddr)
	}
	return nil, fmt.Errorf("unsupported kv backend %q", cfg.KVBackend)
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
