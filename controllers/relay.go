package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"wardrobeapi/services"
)

// RelayIn is the body accepted by the AI relay endpoints.
type RelayIn struct {
	Messages []services.Message `json:"messages" validate:"required,min=1,dive"`
}

// RelayController exposes the thin provider relays used by browser clients
// that build their own prompts.
type RelayController struct {
	AI         services.Completer
	Weather    *services.WeatherService
	Model      string
	TryOnModel string
}

func (controller *RelayController) RelayRoutes(g *echo.Group) {
	g.GET("/weather", controller.RelayWeather)
	g.POST("/gemini", controller.Gemini)
	g.POST("/tryon", controller.TryOn)
}

// relayError keeps the upstream status code the way the relay always did.
func relayError(c echo.Context, err error) error {
	var upstream *services.UpstreamError
	switch {
	case errors.Is(err, services.ErrNotConfigured):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "API 配置缺失"})
	case errors.As(err, &upstream) && upstream.StatusCode >= 400:
		return c.JSON(upstream.StatusCode, echo.Map{"error": fmt.Sprintf("上游 API 错误: %s", upstream.Body)})
	}
	return respondError(c, err)
}

func (controller *RelayController) Gemini(c echo.Context) error {
	var req RelayIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	content, err := controller.AI.Complete(c.Request().Context(), req.Messages)
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusOK, services.NewChatCompletion(controller.Model, content))
}

func (controller *RelayController) TryOn(c echo.Context) error {
	var req RelayIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	content, err := controller.AI.CompleteTryOn(c.Request().Context(), req.Messages)
	if err != nil {
		return relayError(c, err)
	}
	return c.JSON(http.StatusOK, services.NewChatCompletion(controller.TryOnModel, content))
}

// RelayWeather queries the provider directly, bypassing the weather cache.
func (controller *RelayController) RelayWeather(c echo.Context) error {
	at, ok, err := queryCoordinates(c)
	if err != nil {
		return err
	}
	if !ok {
		return badRequest("缺少经纬度参数")
	}
	data, err := controller.Weather.Provider().Fetch(c.Request().Context(), at)
	var upstream *services.UpstreamError
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, data)
	case errors.Is(err, services.ErrNotConfigured):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "未配置天气API密钥"})
	case errors.As(err, &upstream):
		log.Warn().Err(err).Msg("weather relay upstream failure")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "天气API请求失败"})
	}
	return respondError(c, err)
}
