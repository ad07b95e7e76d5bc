package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"wardrobeapi/cache"
	"wardrobeapi/models"
)

// WeatherService serves the current weather through the weather cache slot.
type WeatherService struct {
	provider      WeatherProvider
	slot          *cache.Slot[models.WeatherData]
	seq           *cache.Sequencer
	locateTimeout time.Duration
	opts          options
}

func NewWeatherService(provider WeatherProvider, slot *cache.Slot[models.WeatherData], seq *cache.Sequencer, locateTimeout time.Duration, opts ...Option) *WeatherService {
	return &WeatherService{
		provider:      provider,
		slot:          slot,
		seq:           seq,
		locateTimeout: locateTimeout,
		opts:          newOptions(opts),
	}
}

func (w *WeatherService) Provider() WeatherProvider {
	return w.provider
}

// Current returns cached weather when fresh. With force, or on a miss, the
// slot is cleared, the caller is located and the provider queried. The fresh
// result is cached only when no newer request was issued meanwhile.
func (w *WeatherService) Current(ctx context.Context, locator Locator, force bool) (*models.WeatherData, error) {
	if force {
		if err := w.slot.Clear(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to clear weather cache")
		}
	} else if cached := w.Cached(ctx); cached != nil {
		return cached, nil
	}

	at, err := LocateWithTimeout(ctx, locator, w.locateTimeout)
	if err != nil {
		return nil, err
	}
	ticket := w.seq.Begin(w.slot.Key())
	data, err := w.provider.Fetch(ctx, at)
	if err != nil {
		return nil, err
	}
	data.CachedAt = w.opts.now()

	if !w.seq.IsLatest(ticket) {
		log.Debug().Msg("weather superseded by a newer request, not caching")
		return data, nil
	}
	entry, err := w.slot.Put(ctx, *data)
	if err != nil {
		reportCacheFailure(err, w.slot.Key())
		return data, nil
	}
	data.CachedAt = entry.FetchedAt
	return data, nil
}

// Cached returns the fresh cached weather or nil. Cache read failures count
// as a miss.
func (w *WeatherService) Cached(ctx context.Context) *models.WeatherData {
	entry, err := w.slot.Get(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("weather cache unavailable")
		return nil
	}
	if entry == nil {
		return nil
	}
	data := entry.Value
	data.CachedAt = entry.FetchedAt
	return &data
}
