package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"wardrobeapi/kvstore"
	"wardrobeapi/models"
)

// RecommendationEntry is the cached recommendation list of one occasion.
type RecommendationEntry struct {
	Date            string                        `json:"date"`
	Recommendations []models.OutfitRecommendation `json:"recommendations"`
	Weather         models.WeatherSnapshot        `json:"weather"`
	GeneratedAt     time.Time                     `json:"generatedAt"`
}

// RecommendationCache maps occasions to the recommendations generated for
// them today. All occasions share one key-value record.
type RecommendationCache struct {
	// mu serializes the load-modify-save of the shared record.
	mu   sync.Mutex
	kv   kvstore.Store
	opts options
}

func NewRecommendationCache(kv kvstore.Store, opts ...Option) *RecommendationCache {
	return &RecommendationCache{kv: kv, opts: newOptions(opts)}
}

func (c *RecommendationCache) load(ctx context.Context) (map[string]RecommendationEntry, error) {
	entries := map[string]RecommendationEntry{}
	raw, err := c.kv.Get(ctx, RecommendationsKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.Warn().Err(err).Str("key", RecommendationsKey).Msg("ignoring unreadable recommendation cache")
		return map[string]RecommendationEntry{}, nil
	}
	return entries, nil
}

func (c *RecommendationCache) save(ctx context.Context, entries map[string]RecommendationEntry) error {
	today := c.opts.today()
	for occasion, entry := range entries {
		if entry.Date != today {
			delete(entries, occasion)
		}
	}
	if len(entries) == 0 {
		return c.kv.Delete(ctx, RecommendationsKey)
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, RecommendationsKey, raw)
}

// Get returns today's entry for occasion or nil. It never writes.
func (c *RecommendationCache) Get(ctx context.Context, occasion string) (*RecommendationEntry, error) {
	entries, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	entry, ok := entries[occasion]
	if !ok || entry.Date != c.opts.today() {
		return nil, nil
	}
	return &entry, nil
}

// Put stores recommendations for occasion under today's date and purges
// entries of every other day.
func (c *RecommendationCache) Put(ctx context.Context, occasion string, recs []models.OutfitRecommendation, weather models.WeatherSnapshot) (*RecommendationEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	now := c.opts.now()
	entry := RecommendationEntry{
		Date:            LocalDate(now, c.opts.loc),
		Recommendations: recs,
		Weather:         weather,
		GeneratedAt:     now,
	}
	entries[occasion] = entry
	if err := c.save(ctx, entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Invalidate removes occasion, purging stale days as any write does.
func (c *RecommendationCache) Invalidate(ctx context.Context, occasion string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries, err := c.load(ctx)
	if err != nil {
		return err
	}
	delete(entries, occasion)
	return c.save(ctx, entries)
}

// Occasions lists the occasions held, stale ones included.
func (c *RecommendationCache) Occasions(ctx context.Context) ([]string, error) {
	entries, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	occasions := make([]string, 0, len(entries))
	for occasion := range entries {
		occasions = append(occasions, occasion)
	}
	return occasions, nil
}
