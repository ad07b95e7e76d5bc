package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
)

// MemoryStore is a process-local store on a ristretto cache. Values are
// costed by their size, so maxBytes bounds the total held.
type MemoryStore struct {
	client   *ristretto.Cache
	cache    *cache.Cache[[]byte]
	maxBytes int64
}

func NewMemory(maxBytes int64) (*MemoryStore, error) {
	if maxBytes <= 0 {
		maxBytes = 5 << 20
	}
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        1e4,
		MaxCost:            maxBytes,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	return &MemoryStore{
		client:   client,
		cache:    cache.New[[]byte](ristretto_store.NewRistretto(client)),
		maxBytes: maxBytes,
	}, nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := m.cache.Get(ctx, key)
	if err != nil {
		if isCacheMiss(err) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	return value, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	if int64(len(value)) > m.maxBytes {
		return fmt.Errorf("%w: %q needs %d of %d bytes", ErrQuotaExceeded, key, len(value), m.maxBytes)
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	if err := m.cache.Set(ctx, key, stored, store.WithCost(int64(len(stored)))); err != nil {
		return unavailable(err)
	}
	// ristretto applies writes through a buffer
	m.client.Wait()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := m.cache.Delete(ctx, key); err != nil {
		return unavailable(err)
	}
	m.client.Wait()
	return nil
}

func (m *MemoryStore) Close() error {
	m.client.Close()
	return nil
}

func isCacheMiss(err error) bool {
	var ptr *store.NotFound
	var val store.NotFound
	return errors.As(err, &ptr) || errors.As(err, &val)
}
