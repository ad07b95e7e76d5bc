package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/test"
)

const recommendationReply = `[
  {"id":"推荐1","clothingIds":["c1","c2"],"reason":"清爽利落","score":93,"occasion":"通勤","temperature":18},
  {"id":"推荐2","clothingIds":["c1","c3"],"reason":"轻松休闲","score":85,"occasion":"通勤","temperature":18}
]`

func TestWeatherWithCoordinates(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(test.NewJSONRequest(http.MethodGet, "/weather?lat=31.23&lon=121.47", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode[models.WeatherData](t, rec)
	assert.Equal(t, "上海", data.Location)
	require.Len(t, env.weather.Calls, 1)
	assert.Equal(t, models.Coordinates{Latitude: 31.23, Longitude: 121.47}, env.weather.Calls[0])

	rec = env.do(test.NewJSONRequest(http.MethodGet, "/weather", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.weather.Calls, 1)

	rec = env.do(test.NewJSONRequest(http.MethodGet, "/weather?lat=31.23&lon=121.47&refresh=true", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, env.weather.Calls, 2)
}

func TestWeatherWithoutLocation(t *testing.T) {
	env := setupEnv(t)

	rec := env.do(test.NewJSONRequest(http.MethodGet, "/weather", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decode[map[string]interface{}](t, rec)
	assert.Equal(t, true, payload["retry"])

	rec = env.do(test.NewJSONRequest(http.MethodGet, "/weather?lat=91&lon=0", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(test.NewJSONRequest(http.MethodGet, "/weather?lat=30", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWeatherDefaultLocation(t *testing.T) {
	env := setupEnv(t, withDefaultLocation(models.Coordinates{Latitude: 39.9, Longitude: 116.4}))

	rec := env.do(test.NewJSONRequest(http.MethodGet, "/weather", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 39.9, env.weather.Calls[0].Latitude)
}

func TestWeatherUpstreamFailure(t *testing.T) {
	env := setupEnv(t)
	env.weather.Err = &services.UpstreamError{Provider: "qweather", StatusCode: 200, Code: "402"}

	rec := env.do(test.NewJSONRequest(http.MethodGet, "/weather?lat=1&lon=2", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestRecommendationsFlow(t *testing.T) {
	env := setupEnv(t)
	req := services.RecommendRequest{Occasion: "通勤", Temperature: 18, Weather: "晴"}

	rec := env.do(test.NewJSONRequest(http.MethodPost, "/recommendations", req))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "profile_required", decode[map[string]interface{}](t, rec)["code"])

	test.FakeProfile(env.store)
	test.FakeClothing(env.store, "c1", models.CategoryTop)
	test.FakeClothing(env.store, "c2", models.CategoryBottom)
	rec = env.do(test.NewJSONRequest(http.MethodPost, "/recommendations", req))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "not_enough_clothes", decode[map[string]interface{}](t, rec)["code"])

	test.FakeClothing(env.store, "c3", models.CategoryShoes)
	env.ai.Reply = recommendationReply
	rec = env.do(test.NewJSONRequest(http.MethodPost, "/recommendations", req))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[services.RecommendResult](t, rec)
	assert.False(t, first.Cached)
	require.Len(t, first.Recommendations, 2)

	rec = env.do(test.NewJSONRequest(http.MethodPost, "/recommendations", req))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[services.RecommendResult](t, rec).Cached)
	assert.Equal(t, 1, env.ai.Calls())

	rec = env.do(test.NewJSONRequest(http.MethodPost, "/recommendations?refresh=true", req))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[services.RecommendResult](t, rec).Cached)
	assert.Equal(t, 2, env.ai.Calls())

	rec = env.do(test.NewJSONRequest(http.MethodPost, "/recommendations/accept", services.AcceptRequest{
		Recommendation: first.Recommendations[0],
		Weather:        models.StrPointer("晴"),
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	entry := decode[models.OutfitHistory](t, rec)
	assert.Equal(t, "通勤", entry.Occasion)
	require.NotNil(t, entry.AISuggestion)
	assert.Equal(t, "清爽利落", *entry.AISuggestion)
}

func TestRecommendationsValidation(t *testing.T) {
	env := setupEnv(t)
	rec := env.do(test.NewJSONRequest(http.MethodPost, "/recommendations", map[string]interface{}{"temperature": 10}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDailyRecommendation(t *testing.T) {
	env := setupEnv(t)
	test.FakeClothing(env.store, "c1", models.CategoryTop)
	env.ai.Reply = `{"recommendation":"白T叠穿薄外套","clothingIds":["c1"]}`

	rec := env.do(test.NewJSONRequest(http.MethodGet, "/recommendations/daily?lat=31.2&lon=121.5", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	first := decode[services.DailyResult](t, rec)
	assert.Equal(t, "白T叠穿薄外套", first.Recommendation)
	assert.False(t, first.Cached)

	rec = env.do(test.NewJSONRequest(http.MethodGet, "/recommendations/daily", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[services.DailyResult](t, rec).Cached)
	assert.Equal(t, 1, env.ai.Calls())
}

func TestDailyRecommendationEmptyWardrobe(t *testing.T) {
	env := setupEnv(t)
	rec := env.do(test.NewJSONRequest(http.MethodGet, "/recommendations/daily?lat=31.2&lon=121.5", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTryOnWithClothingID(t *testing.T) {
	env := setupEnv(t)
	test.FakeClothing(env.store, "c1", models.CategoryTop)
	env.ai.Reply = "![试衣](https://cdn.example.com/tryon.png)"

	rec := env.do(test.NewJSONRequest(http.MethodPost, "/tryon", TryOnIn{Person: test.PNGDataURL(4, 4), ClothingID: "c1"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[services.TryOnResult](t, rec)
	assert.Equal(t, "https://cdn.example.com/tryon.png", result.Image)
	require.Len(t, env.ai.TryOns, 1)
	assert.Len(t, env.ai.TryOns[0][0].Content.Parts, 3)

	rec = env.do(test.NewJSONRequest(http.MethodPost, "/tryon", TryOnIn{Person: test.PNGDataURL(4, 4), ClothingID: "missing"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(test.NewJSONRequest(http.MethodPost, "/tryon", TryOnIn{Person: test.PNGDataURL(4, 4)}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTryOnWithGarmentImage(t *testing.T) {
	env := setupEnv(t)
	env.ai.Reply = "data:image/png;base64,iVBORw0KGgo="

	rec := env.do(test.NewJSONRequest(http.MethodPost, "/tryon", TryOnIn{Person: test.PNGDataURL(4, 4), Garment: test.PNGDataURL(2, 2)}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", decode[services.TryOnResult](t, rec).Image)
}
