package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"wardrobeapi/kvstore"
)

// Entry is a cached value with the time it was fetched.
type Entry[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Slot is a single-value cache under one key. A value is fresh while it was
// fetched on the current local day and, when maxAge is set, less than maxAge
// ago.
type Slot[T any] struct {
	kv     kvstore.Store
	key    string
	maxAge time.Duration
	opts   options
}

func NewSlot[T any](kv kvstore.Store, key string, maxAge time.Duration, opts ...Option) *Slot[T] {
	return &Slot[T]{kv: kv, key: key, maxAge: maxAge, opts: newOptions(opts)}
}

// NewWeatherSlot holds the last weather fetch for up to three hours.
func NewWeatherSlot[T any](kv kvstore.Store, opts ...Option) *Slot[T] {
	return NewSlot[T](kv, WeatherKey, WeatherMaxAge, opts...)
}

// NewDailySlot holds the outfit of the day until the day ends.
func NewDailySlot[T any](kv kvstore.Store, opts ...Option) *Slot[T] {
	return NewSlot[T](kv, DailyKey, 0, opts...)
}

func (s *Slot[T]) Key() string {
	return s.key
}

func (s *Slot[T]) fresh(fetchedAt time.Time) bool {
	now := s.opts.now()
	if LocalDate(fetchedAt, s.opts.loc) != LocalDate(now, s.opts.loc) {
		return false
	}
	return s.maxAge <= 0 || now.Sub(fetchedAt) < s.maxAge
}

// Get returns the cached entry, or nil when the slot is empty. A stale or
// unreadable value is removed from the store before reporting a miss.
func (s *Slot[T]) Get(ctx context.Context) (*Entry[T], error) {
	raw, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var entry Entry[T]
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Warn().Err(err).Str("key", s.key).Msg("dropping unreadable cache entry")
		return nil, s.Clear(ctx)
	}
	if !s.fresh(entry.FetchedAt) {
		return nil, s.Clear(ctx)
	}
	return &entry, nil
}

// Put stores value stamped with the current time.
func (s *Slot[T]) Put(ctx context.Context, value T) (*Entry[T], error) {
	entry := &Entry[T]{Value: value, FetchedAt: s.opts.now()}
	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Set(ctx, s.key, raw); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Slot[T]) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, s.key)
}
