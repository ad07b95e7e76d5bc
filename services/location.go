package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wardrobeapi/models"
)

// DefaultLocateTimeout bounds how long a position lookup may take.
const DefaultLocateTimeout = 10 * time.Second

// Locator supplies the caller's position.
type Locator interface {
	Locate(ctx context.Context) (models.Coordinates, error)
}

type LocatorFunc func(ctx context.Context) (models.Coordinates, error)

func (f LocatorFunc) Locate(ctx context.Context) (models.Coordinates, error) {
	return f(ctx)
}

// FixedLocator always reports the same position.
type FixedLocator models.Coordinates

func (f FixedLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	return models.Coordinates(f), nil
}

// NoLocator is used when neither the request nor the configuration carries a
// position.
type NoLocator struct{}

func (NoLocator) Locate(ctx context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, fmt.Errorf("%w: no coordinates given and no default location configured", ErrLocationUnavailable)
}

// LocateWithTimeout runs l and gives up after d. Every failure is reported as
// ErrLocationUnavailable; running out of time also matches ErrTimeout.
func LocateWithTimeout(ctx context.Context, l Locator, d time.Duration) (models.Coordinates, error) {
	if d <= 0 {
		d = DefaultLocateTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type result struct {
		at  models.Coordinates
		err error
	}
	done := make(chan result, 1)
	go func() {
		at, err := l.Locate(ctx)
		done <- result{at, err}
	}()

	select {
	case r := <-done:
		if r.err == nil {
			return r.at, nil
		}
		if errors.Is(r.err, ErrLocationUnavailable) {
			return models.Coordinates{}, r.err
		}
		if errors.Is(r.err, context.DeadlineExceeded) {
			return models.Coordinates{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, ErrTimeout)
		}
		return models.Coordinates{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, r.err)
	case <-ctx.Done():
		return models.Coordinates{}, fmt.Errorf("%w: %w", ErrLocationUnavailable, ErrTimeout)
	}
}
