package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"wardrobeapi/models"
)

// UnknownLocation is reported when the city lookup fails.
const UnknownLocation = "未知位置"

// WeatherProvider returns current conditions and a short forecast.
type WeatherProvider interface {
	Fetch(ctx context.Context, at models.Coordinates) (*models.WeatherData, error)
}

// QWeatherClient talks to the QWeather v7 API.
type QWeatherClient struct {
	client *resty.Client
	apiKey string
}

func NewQWeatherClient(baseURL, apiKey string, timeout time.Duration) *QWeatherClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	return &QWeatherClient{client: c, apiKey: apiKey}
}

type qweatherNow struct {
	Code string `json:"code"`
	Now  struct {
		Temp      string `json:"temp"`
		FeelsLike string `json:"feelsLike"`
		Text      string `json:"text"`
		Icon      string `json:"icon"`
		Humidity  string `json:"humidity"`
		WindDir   string `json:"windDir"`
		WindScale string `json:"windScale"`
	} `json:"now"`
}

type qweatherDaily struct {
	Code  string `json:"code"`
	Daily []struct {
		FxDate    string `json:"fxDate"`
		TempMin   string `json:"tempMin"`
		TempMax   string `json:"tempMax"`
		TextDay   string `json:"textDay"`
		TextNight string `json:"textNight"`
		IconDay   string `json:"iconDay"`
		IconNight string `json:"iconNight"`
	} `json:"daily"`
}

type qweatherCity struct {
	Code     string `json:"code"`
	Location []struct {
		Name string `json:"name"`
	} `json:"location"`
}

// Fetch requests current weather, the 3 day forecast and the city name in
// parallel. A failed city lookup only degrades the location name.
func (q *QWeatherClient) Fetch(ctx context.Context, at models.Coordinates) (*models.WeatherData, error) {
	if q.apiKey == "" {
		return nil, fmt.Errorf("qweather: %w", ErrNotConfigured)
	}
	location := fmt.Sprintf("%s,%s",
		strconv.FormatFloat(at.Longitude, 'f', -1, 64),
		strconv.FormatFloat(at.Latitude, 'f', -1, 64))

	var now qweatherNow
	var daily qweatherDaily
	var city qweatherCity

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return q.get(gctx, "/v7/weather/now", location, &now, &now.Code)
	})
	g.Go(func() error {
		return q.get(gctx, "/v7/weather/3d", location, &daily, &daily.Code)
	})
	g.Go(func() error {
		if err := q.get(gctx, "/v7/geo/city", location, &city, &city.Code); err != nil {
			log.Warn().Err(err).Str("location", location).Msg("qweather city lookup failed")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &models.WeatherData{
		Location: UnknownLocation,
		Current: models.CurrentWeather{
			Temp:      number(now.Now.Temp),
			FeelsLike: number(now.Now.FeelsLike),
			Text:      now.Now.Text,
			Icon:      now.Now.Icon,
			Humidity:  number(now.Now.Humidity),
			WindDir:   now.Now.WindDir,
			WindScale: now.Now.WindScale,
		},
		Forecast: make([]models.ForecastDay, 0, len(daily.Daily)),
	}
	if len(city.Location) > 0 && city.Location[0].Name != "" {
		data.Location = city.Location[0].Name
	}
	for _, d := range daily.Daily {
		data.Forecast = append(data.Forecast, models.ForecastDay{
			Date:      d.FxDate,
			TempMin:   number(d.TempMin),
			TempMax:   number(d.TempMax),
			TextDay:   d.TextDay,
			TextNight: d.TextNight,
			IconDay:   d.IconDay,
			IconNight: d.IconNight,
		})
	}
	return data, nil
}

// get decodes one QWeather endpoint into out. code points at the decoded
// body status, which must be "200".
func (q *QWeatherClient) get(ctx context.Context, path, location string, out interface{}, code *string) error {
	resp, err := q.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{"location": location, "key": q.apiKey}).
		Get(path)
	if err != nil {
		return requestError("qweather", err)
	}
	body, err := gunzipIfNeeded(resp.Body())
	if err != nil {
		return &UpstreamError{Provider: "qweather", StatusCode: resp.StatusCode(), Body: err.Error()}
	}
	if resp.StatusCode() != http.StatusOK {
		return &UpstreamError{Provider: "qweather", StatusCode: resp.StatusCode(), Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Provider: "qweather", StatusCode: resp.StatusCode(), Body: string(body)}
	}
	if *code != "200" {
		return &UpstreamError{Provider: "qweather", StatusCode: resp.StatusCode(), Code: *code, Body: string(body)}
	}
	return nil
}

// gunzipIfNeeded inflates bodies that arrive gzip compressed without a
// Content-Encoding header.
func gunzipIfNeeded(body []byte) ([]byte, error) {
	if len(body) < 2 || body[0] != 0x1f || body[1] != 0x8b {
		return body, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func number(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
