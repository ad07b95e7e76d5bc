package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"wardrobeapi/models"
	"wardrobeapi/services"
)

// CreateClothingIn carries the garment attributes plus its images encoded as
// data URLs. The thumbnail is derived from the image when omitted.
type CreateClothingIn struct {
	models.Clothing
	Image     string `json:"image" validate:"required"`
	Thumbnail string `json:"thumbnail"`
}

type RecognizeIn struct {
	Image string `json:"image" validate:"required"`
}

type ClothingResponse struct {
	models.Clothing
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func clothingResponse(c models.Clothing) ClothingResponse {
	return ClothingResponse{
		Clothing:     c,
		ImageURL:     fmt.Sprintf("/clothes/%s/image", c.ID),
		ThumbnailURL: fmt.Sprintf("/clothes/%s/thumbnail", c.ID),
	}
}

func clothesResponse(clothes []models.Clothing) []ClothingResponse {
	out := make([]ClothingResponse, 0, len(clothes))
	for _, c := range clothes {
		out = append(out, clothingResponse(c))
	}
	return out
}

type ClothesController struct {
	Advisor *services.AdvisorService
}

func (controller *ClothesController) ClothingRoutes(g *echo.Group) {
	g.POST("", controller.CreateClothing)
	g.GET("", controller.ListClothes)
	g.POST("/recognize", controller.Recognize)
	g.GET("/:id", controller.GetClothing)
	g.PATCH("/:id", controller.UpdateClothing)
	g.DELETE("/:id", controller.DeleteClothing)
	g.POST("/:id/worn", controller.MarkWorn)
	g.GET("/:id/image", controller.Image)
	g.GET("/:id/thumbnail", controller.Thumbnail)
}

func (controller *ClothesController) CreateClothing(c echo.Context) error {
	var req CreateClothingIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := decodeImage("image", req.Image)
	if err != nil {
		return respondError(c, err)
	}
	if image.IsEmpty() {
		return respondError(c, badRequest("image is empty"))
	}
	thumbnail, err := decodeImage("thumbnail", req.Thumbnail)
	if err != nil {
		return respondError(c, err)
	}
	image, thumbnail, err = services.PrepareClothingImages(image, thumbnail)
	if err != nil {
		return respondError(c, badRequest("could not process image: %v", err))
	}

	clothing := req.Clothing
	clothing.Image = image
	clothing.Thumbnail = thumbnail
	if err := storeFrom(c).AddClothing(c.Request().Context(), &clothing); err != nil {
		return respondError(c, err)
	}
	log.Info().Str("id", clothing.ID).Str("category", string(clothing.Category)).Msg("clothing added")
	return c.JSON(http.StatusCreated, clothingResponse(clothing))
}

func (controller *ClothesController) ListClothes(c echo.Context) error {
	st := storeFrom(c)
	ctx := c.Request().Context()
	var clothes []models.Clothing
	var err error
	if category := c.QueryParam("category"); category != "" {
		if !models.ClothingCategory(category).Valid() {
			return respondError(c, badRequest("unknown category %q", category))
		}
		clothes, err = st.GetClothesByCategory(ctx, models.ClothingCategory(category))
	} else {
		clothes, err = st.GetAllClothes(ctx)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, clothesResponse(clothes))
}

func (controller *ClothesController) GetClothing(c echo.Context) error {
	clothing, err := storeFrom(c).GetClothing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, clothingResponse(*clothing))
}

func (controller *ClothesController) UpdateClothing(c echo.Context) error {
	var patch models.ClothingPatch
	if err := bindAndValidate(c, &patch); err != nil {
		return err
	}
	clothing, err := storeFrom(c).UpdateClothing(c.Request().Context(), c.Param("id"), patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, clothingResponse(*clothing))
}

func (controller *ClothesController) DeleteClothing(c echo.Context) error {
	if err := storeFrom(c).DeleteClothing(c.Request().Context(), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (controller *ClothesController) MarkWorn(c echo.Context) error {
	clothing, err := storeFrom(c).MarkWorn(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, clothingResponse(*clothing))
}

func (controller *ClothesController) Image(c echo.Context) error {
	return controller.blob(c, func(cl *models.Clothing) models.Blob { return cl.Image })
}

func (controller *ClothesController) Thumbnail(c echo.Context) error {
	return controller.blob(c, func(cl *models.Clothing) models.Blob { return cl.Thumbnail })
}

func (controller *ClothesController) blob(c echo.Context, pick func(*models.Clothing) models.Blob) error {
	clothing, err := storeFrom(c).GetClothing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	b := pick(clothing)
	if b.IsEmpty() {
		return respondError(c, echo.NewHTTPError(http.StatusNotFound, "image not found"))
	}
	c.Response().Header().Set("Cache-Control", "private, max-age=86400")
	return c.Blob(http.StatusOK, b.MimeType, b.Data)
}

func (controller *ClothesController) Recognize(c echo.Context) error {
	var req RecognizeIn
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := decodeImage("image", req.Image)
	if err != nil {
		return respondError(c, err)
	}
	result, err := controller.Advisor.Recognize(c.Request().Context(), image)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
