package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wardrobeapi/models"
	"wardrobeapi/services"
)

type TryOnIn struct {
	Person string `json:"person" validate:"required"`
	// Either Garment (a data URL) or ClothingID selects the garment.
	Garment    string `json:"garment" validate:"required_without=ClothingID"`
	ClothingID string `json:"clothing_id"`
}

type AdvisorController struct {
	Weather         *services.WeatherService
	Advisor         *services.AdvisorService
	DefaultLocation *models.Coordinates
}

func (controller *AdvisorController) WeatherRoutes(g *echo.Group) {
	g.GET("", controller.CurrentWeather)
}

func (controller *AdvisorController) RecommendationRoutes(g *echo.Group) {
	g.POST("", controller.Recommend)
	g.POST("/accept", controller.Accept)
	g.GET("/daily", controller.Daily)
}

func (controller *AdvisorController) TryOnRoutes(g *echo.Group) {
	g.POST("", controller.TryOn)
}

func (controller *AdvisorController) CurrentWeather(c echo.Context) error {
	locator, err := locatorFor(c, controller.DefaultLocation)
	if err != nil {
		return err
	}
	data, err := controller.Weather.Current(c.Request().Context(), locator, queryBool(c, "refresh"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

func (controller *AdvisorController) Recommend(c echo.Context) error {
	var req services.RecommendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if queryBool(c, "refresh") {
		req.Force = true
	}
	result, err := controller.Advisor.Recommend(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (controller *AdvisorController) Accept(c echo.Context) error {
	var req services.AcceptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	entry, err := controller.Advisor.AcceptRecommendation(c.Request().Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (controller *AdvisorController) Daily(c echo.Context) error {
	locator, err := locatorFor(c, controller.DefaultLocation)
	if err != nil {
		return err
	}
	result, err := controller.Advisor.Daily(c.Request().Context(), locator, queryBool(c, "refresh"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (controller *AdvisorController) TryOn(c echo.Context) error {
	var req TryOnIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	person, err := decodeImage("person", req.Person)
	if err != nil {
		return respondError(c, err)
	}
	ctx := c.Request().Context()
	var result *services.TryOnResult
	if req.ClothingID != "" {
		result, err = controller.Advisor.TryOnClothing(ctx, person, req.ClothingID)
	} else {
		garment, decodeErr := decodeImage("garment", req.Garment)
		if decodeErr != nil {
			return respondError(c, decodeErr)
		}
		result, err = controller.Advisor.TryOn(ctx, person, garment)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
