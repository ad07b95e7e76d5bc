package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wardrobeapi/models"
	"wardrobeapi/store"
)

type CreateHistoryIn struct {
	ClothingIDs  []string `json:"clothing_ids" validate:"required,min=1"`
	Occasion     string   `json:"occasion" validate:"max=50"`
	Weather      *string  `json:"weather"`
	Temperature  *float64 `json:"temperature"`
	Rating       *int     `json:"rating" validate:"omitempty,min=1,max=5"`
	AISuggestion *string  `json:"ai_suggestion"`
	// Image is an optional photo of the outfit as a data URL.
	Image string `json:"image"`
}

type HistoryController struct {
}

func (controller *HistoryController) HistoryRoutes(g *echo.Group) {
	g.GET("", controller.ListHistory)
	g.POST("", controller.CreateHistory)
	g.GET("/:id", controller.GetHistory)
	g.DELETE("/:id", controller.DeleteHistory)
}

func (controller *HistoryController) ListHistory(c echo.Context) error {
	limit, err := queryInt(c, "limit", store.DefaultHistoryLimit)
	if err != nil {
		return err
	}
	entries, err := storeFrom(c).GetOutfitHistory(c.Request().Context(), limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

func (controller *HistoryController) CreateHistory(c echo.Context) error {
	var req CreateHistoryIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := decodeImage("image", req.Image)
	if err != nil {
		return respondError(c, err)
	}
	entry := models.OutfitHistory{
		ClothingIDs:  req.ClothingIDs,
		Occasion:     req.Occasion,
		Weather:      req.Weather,
		Temperature:  req.Temperature,
		Rating:       req.Rating,
		AISuggestion: req.AISuggestion,
		Image:        image,
	}
	if err := storeFrom(c).AddOutfitHistory(c.Request().Context(), &entry); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (controller *HistoryController) GetHistory(c echo.Context) error {
	detail, err := storeFrom(c).GetOutfitHistoryEntry(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

func (controller *HistoryController) DeleteHistory(c echo.Context) error {
	if err := storeFrom(c).DeleteOutfitHistory(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
