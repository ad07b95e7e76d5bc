package services

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/models"
)

const (
	nowBody   = `{"code":"200","now":{"temp":"12","feelsLike":"10","text":"晴","icon":"100","humidity":"40","windDir":"北风","windScale":"3"}}`
	dailyBody = `{"code":"200","daily":[{"fxDate":"2024-03-10","tempMin":"4","tempMax":"15","textDay":"晴","textNight":"多云","iconDay":"100","iconNight":"151"}]}`
	cityBody  = `{"code":"200","location":[{"name":"北京"}]}`
)

type qweatherServer struct {
	mu      sync.Mutex
	queries map[string]string
	bodies  map[string]string
	status  map[string]int
	gzipped bool
	delay   time.Duration
}

func newQWeatherServer(t *testing.T, q *qweatherServer) *httptest.Server {
	if q.bodies == nil {
		q.bodies = map[string]string{
			"/v7/weather/now": nowBody,
			"/v7/weather/3d":  dailyBody,
			"/v7/geo/city":    cityBody,
		}
	}
	q.queries = map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q.mu.Lock()
		q.queries[r.URL.Path] = r.URL.RawQuery
		body, status := q.bodies[r.URL.Path], q.status[r.URL.Path]
		q.mu.Unlock()
		if q.delay > 0 {
			time.Sleep(q.delay)
		}
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)
		if q.gzipped {
			var buf bytes.Buffer
			zw := gzip.NewWriter(&buf)
			zw.Write([]byte(body))
			zw.Close()
			w.Write(buf.Bytes())
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestQWeatherFetchOk(t *testing.T) {
	q := &qweatherServer{}
	srv := newQWeatherServer(t, q)
	client := NewQWeatherClient(srv.URL, "secret", time.Second)

	data, err := client.Fetch(context.Background(), models.Coordinates{Latitude: 39.9, Longitude: 116.4})
	require.NoError(t, err)

	assert.Equal(t, "北京", data.Location)
	assert.Equal(t, 12.0, data.Current.Temp)
	assert.Equal(t, 10.0, data.Current.FeelsLike)
	assert.Equal(t, "晴", data.Current.Text)
	assert.Equal(t, "3", data.Current.WindScale)
	require.Len(t, data.Forecast, 1)
	assert.Equal(t, 15.0, data.Forecast[0].TempMax)
	assert.Equal(t, "多云", data.Forecast[0].TextNight)

	q.mu.Lock()
	defer q.mu.Unlock()
	assert.Contains(t, q.queries["/v7/weather/now"], "location=116.4%2C39.9")
	assert.Contains(t, q.queries["/v7/weather/now"], "key=secret")
	assert.Contains(t, q.queries, "/v7/geo/city")
}

func TestQWeatherGzipBody(t *testing.T) {
	srv := newQWeatherServer(t, &qweatherServer{gzipped: true})
	client := NewQWeatherClient(srv.URL, "secret", time.Second)

	data, err := client.Fetch(context.Background(), models.Coordinates{Latitude: 39.9, Longitude: 116.4})
	require.NoError(t, err)
	assert.Equal(t, 12.0, data.Current.Temp)
}

func TestQWeatherCityFailureKeepsWeather(t *testing.T) {
	q := &qweatherServer{bodies: map[string]string{
		"/v7/weather/now": nowBody,
		"/v7/weather/3d":  dailyBody,
		"/v7/geo/city":    `{"code":"404"}`,
	}}
	srv := newQWeatherServer(t, q)
	client := NewQWeatherClient(srv.URL, "secret", time.Second)

	data, err := client.Fetch(context.Background(), models.Coordinates{Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	assert.Equal(t, UnknownLocation, data.Location)
	assert.Equal(t, "晴", data.Current.Text)
}

func TestQWeatherBodyCodeNot200(t *testing.T) {
	q := &qweatherServer{bodies: map[string]string{
		"/v7/weather/now": `{"code":"401"}`,
		"/v7/weather/3d":  dailyBody,
		"/v7/geo/city":    cityBody,
	}}
	srv := newQWeatherServer(t, q)
	client := NewQWeatherClient(srv.URL, "bad", time.Second)

	_, err := client.Fetch(context.Background(), models.Coordinates{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, "401", upstream.Code)
}

func TestQWeatherHTTPError(t *testing.T) {
	q := &qweatherServer{status: map[string]int{"/v7/weather/3d": http.StatusServiceUnavailable}}
	srv := newQWeatherServer(t, q)
	client := NewQWeatherClient(srv.URL, "secret", time.Second)

	_, err := client.Fetch(context.Background(), models.Coordinates{})
	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
}

func TestQWeatherTimeout(t *testing.T) {
	srv := newQWeatherServer(t, &qweatherServer{delay: 300 * time.Millisecond})
	client := NewQWeatherClient(srv.URL, "secret", 50*time.Millisecond)

	_, err := client.Fetch(context.Background(), models.Coordinates{})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestQWeatherNotConfigured(t *testing.T) {
	client := NewQWeatherClient("http://127.0.0.1:1", "", time.Second)
	_, err := client.Fetch(context.Background(), models.Coordinates{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestWeatherServiceCachesForThreeHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.weather.Current(ctx, beijing, false)
	require.NoError(t, err)
	assert.Equal(t, "北京", first.Location)
	assert.Equal(t, f.clock.Now(), first.CachedAt)

	f.clock.Advance(2 * time.Hour)
	second, err := f.weather.Current(ctx, NoLocator{}, false)
	require.NoError(t, err)
	assert.Equal(t, first.Current, second.Current)
	assert.Equal(t, 1, f.provider.calls)

	f.clock.Advance(time.Hour)
	_, err = f.weather.Current(ctx, beijing, false)
	require.NoError(t, err)
	assert.Equal(t, 2, f.provider.calls)
}

func TestWeatherServiceForceRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.weather.Current(ctx, beijing, false)
	require.NoError(t, err)

	f.provider.data.Current.Temp = 20
	data, err := f.weather.Current(ctx, beijing, true)
	require.NoError(t, err)
	assert.Equal(t, 20.0, data.Current.Temp)
	assert.Equal(t, 2, f.provider.calls)
}

func TestWeatherServiceForceRefreshFailureClearsCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.weather.Current(ctx, beijing, false)
	require.NoError(t, err)

	f.provider.err = &UpstreamError{Provider: "qweather", StatusCode: 500}
	_, err = f.weather.Current(ctx, beijing, true)
	assert.ErrorIs(t, err, ErrUpstreamFailure)
	assert.Nil(t, f.weather.Cached(ctx))
}

func TestWeatherServiceLocationUnavailable(t *testing.T) {
	f := newFixture(t)

	_, err := f.weather.Current(context.Background(), NoLocator{}, false)
	assert.ErrorIs(t, err, ErrLocationUnavailable)
	assert.Equal(t, 0, f.provider.calls)
}

func TestWeatherServiceCacheWriteFailureStillReturns(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.kv.Close())

	data, err := f.weather.Current(context.Background(), beijing, false)
	require.NoError(t, err)
	assert.Equal(t, "北京", data.Location)
}
