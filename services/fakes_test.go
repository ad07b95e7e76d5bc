package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wardrobeapi/cache"
	"wardrobeapi/dbhelper"
	"wardrobeapi/kvstore"
	"wardrobeapi/models"
	"wardrobeapi/store"
)

var shanghai = time.FixedZone("CST", 8*3600)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeCompleter struct {
	mu         sync.Mutex
	replies    []string
	err        error
	calls      [][]Message
	tryOnCalls [][]Message
	// hold runs outside the lock with the 1-based call number.
	hold func(call int)
}

func (f *fakeCompleter) next() (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	if len(f.replies) > 1 {
		f.replies = f.replies[1:]
	}
	return reply, nil
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, messages)
	call, hold := len(f.calls), f.hold
	reply, err := f.next()
	f.mu.Unlock()
	if hold != nil {
		hold(call)
	}
	return reply, err
}

func (f *fakeCompleter) CompleteTryOn(ctx context.Context, messages []Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tryOnCalls = append(f.tryOnCalls, messages)
	return f.next()
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeProvider struct {
	mu    sync.Mutex
	data  models.WeatherData
	err   error
	calls int
	hold  func(call int)
}

func (f *fakeProvider) Fetch(ctx context.Context, at models.Coordinates) (*models.WeatherData, error) {
	f.mu.Lock()
	f.calls++
	call, hold, data, err := f.calls, f.hold, f.data, f.err
	f.mu.Unlock()
	if hold != nil {
		hold(call)
	}
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func (f *fakeProvider) setText(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data.Current.Text = text
}

// holdFirstCall parks the first call until release is closed. entered is
// closed once that call has started.
func holdFirstCall() (hold func(call int), entered, release chan struct{}) {
	entered = make(chan struct{})
	release = make(chan struct{})
	hold = func(call int) {
		if call == 1 {
			close(entered)
			<-release
		}
	}
	return hold, entered, release
}

func sunnyWeather() models.WeatherData {
	return models.WeatherData{
		Location: "北京",
		Current: models.CurrentWeather{
			Temp: 12, FeelsLike: 10, Text: "晴", Icon: "100", Humidity: 40, WindDir: "北风", WindScale: "3",
		},
		Forecast: []models.ForecastDay{{Date: "2024-03-10", TempMin: 4, TempMax: 15, TextDay: "晴", TextNight: "多云"}},
	}
}

var beijing = FixedLocator{Latitude: 39.9, Longitude: 116.4}

type fixture struct {
	store    *store.Store
	kv       kvstore.Store
	clock    *fakeClock
	ai       *fakeCompleter
	provider *fakeProvider
	weather  *WeatherService
	advisor  *AdvisorService
}

func newFixture(t *testing.T) *fixture {
	db := dbhelper.SetupTestDB()
	t.Cleanup(dbhelper.SetupCleaner(db))
	kv, err := kvstore.NewSQLite(":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	clock := &fakeClock{t: time.Date(2024, 3, 10, 10, 0, 0, 0, shanghai)}
	cacheOpts := []cache.Option{cache.WithClock(clock.Now), cache.WithLocation(shanghai)}
	seq := cache.NewSequencer()
	f := &fixture{
		store:    store.New(db, store.WithClock(clock.Now)),
		kv:       kv,
		clock:    clock,
		ai:       &fakeCompleter{},
		provider: &fakeProvider{data: sunnyWeather()},
	}
	f.weather = NewWeatherService(f.provider, cache.NewWeatherSlot[models.WeatherData](kv, cacheOpts...), seq, time.Second, WithClock(clock.Now))
	f.advisor = NewAdvisorService(
		f.store,
		f.ai,
		f.weather,
		cache.NewRecommendationCache(kv, cacheOpts...),
		cache.NewDailySlot[models.DailyRecommendation](kv, cacheOpts...),
		seq,
		WithClock(clock.Now),
		WithLocation(shanghai),
	)
	return f
}

func (f *fixture) addGarments(t *testing.T, ids ...string) {
	for _, id := range ids {
		require.NoError(t, f.store.AddClothing(context.Background(), &models.Clothing{
			JsonModel:    models.JsonModel{ID: id},
			Image:        models.Blob{MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0x01}},
			Thumbnail:    models.Blob{MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff, 0x02}},
			ColorPrimary: "黑色",
			Category:     models.CategoryTop,
			Type:         "T恤",
			Thickness:    models.ThicknessNormal,
			WarmthLevel:  2,
			Layering:     models.LayeringInner,
		}))
	}
}

func (f *fixture) addProfile(t *testing.T) {
	_, err := f.store.SaveUserProfile(context.Background(), &models.UserProfile{
		Gender:          models.GenderFemale,
		Height:          165,
		Weight:          52,
		StylePreference: []string{"简约", "通勤"},
	})
	require.NoError(t, err)
}
