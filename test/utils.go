package test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"wardrobeapi/codec"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/store"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func NewJSONRequestRaw(method string, target string, json string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(json))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

// PNG returns a real w x h PNG image.
func PNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// PNGDataURL is PNG encoded the way clients upload images.
func PNGDataURL(w, h int) string {
	return codec.Encode(models.Blob{MimeType: "image/png", Data: PNG(w, h)})
}

func FakeClothing(st *store.Store, id string, category models.ClothingCategory) *models.Clothing {
	img := PNG(8, 8)
	clothing := &models.Clothing{
		JsonModel:    models.JsonModel{ID: id},
		Image:        models.Blob{MimeType: "image/png", Data: img},
		Thumbnail:    models.Blob{MimeType: "image/png", Data: img},
		Name:         models.StrPointer("测试" + id),
		ColorPrimary: "白色",
		Category:     category,
		Type:         "T恤",
		Thickness:    models.ThicknessNormal,
		WarmthLevel:  2,
		Layering:     models.LayeringInner,
		Style:        []string{"休闲"},
		Season:       []string{"春", "秋"},
	}
	if err := st.AddClothing(context.Background(), clothing); err != nil {
		panic(err)
	}
	return clothing
}

func FakeProfile(st *store.Store) *models.UserProfile {
	profile := &models.UserProfile{
		Gender:          models.GenderMale,
		Height:          178,
		Weight:          70,
		StylePreference: []string{"休闲"},
	}
	if _, err := st.SaveUserProfile(context.Background(), profile); err != nil {
		panic(err)
	}
	return profile
}

// CompleterMock answers every completion with Reply, or fails with Err.
type CompleterMock struct {
	mu       sync.Mutex
	Reply    string
	Err      error
	Messages [][]services.Message
	TryOns   [][]services.Message
}

func (m *CompleterMock) Complete(ctx context.Context, messages []services.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, messages)
	return m.Reply, m.Err
}

func (m *CompleterMock) CompleteTryOn(ctx context.Context, messages []services.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TryOns = append(m.TryOns, messages)
	return m.Reply, m.Err
}

func (m *CompleterMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Messages) + len(m.TryOns)
}

// WeatherProviderMock returns Data for every position, or fails with Err.
type WeatherProviderMock struct {
	mu    sync.Mutex
	Data  models.WeatherData
	Err   error
	Calls []models.Coordinates
}

func (m *WeatherProviderMock) Fetch(ctx context.Context, at models.Coordinates) (*models.WeatherData, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, at)
	if m.Err != nil {
		return nil, m.Err
	}
	data := m.Data
	return &data, nil
}

func SunnyWeather() models.WeatherData {
	return models.WeatherData{
		Location: "上海",
		Current: models.CurrentWeather{
			Temp: 18, FeelsLike: 17, Text: "晴", Icon: "100", Humidity: 55, WindDir: "东风", WindScale: "2",
		},
		Forecast: []models.ForecastDay{{Date: "2024-04-01", TempMin: 12, TempMax: 21, TextDay: "晴", TextNight: "晴"}},
	}
}
