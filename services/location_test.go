package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/models"
)

func TestLocateWithTimeoutFixed(t *testing.T) {
	at, err := LocateWithTimeout(context.Background(), beijing, time.Second)
	require.NoError(t, err)
	assert.Equal(t, models.Coordinates{Latitude: 39.9, Longitude: 116.4}, at)
}

func TestLocateWithTimeoutExpires(t *testing.T) {
	slow := LocatorFunc(func(ctx context.Context) (models.Coordinates, error) {
		time.Sleep(200 * time.Millisecond)
		return models.Coordinates{Latitude: 1}, nil
	})
	_, err := LocateWithTimeout(context.Background(), slow, 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrLocationUnavailable)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestLocateWithTimeoutDenied(t *testing.T) {
	denied := LocatorFunc(func(ctx context.Context) (models.Coordinates, error) {
		return models.Coordinates{}, errors.New("permission denied")
	})
	_, err := LocateWithTimeout(context.Background(), denied, time.Second)
	assert.ErrorIs(t, err, ErrLocationUnavailable)
	assert.NotErrorIs(t, err, ErrTimeout)

	_, err = LocateWithTimeout(context.Background(), NoLocator{}, time.Second)
	assert.ErrorIs(t, err, ErrLocationUnavailable)
}
