package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wardrobeapi/services"
)

type ChatIn struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type ChatController struct {
	Advisor *services.AdvisorService
}

func (controller *ChatController) ChatRoutes(g *echo.Group) {
	g.GET("", func(c echo.Context) error {
		messages, err := storeFrom(c).GetChatMessages(c.Request().Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, messages)
	})

	g.POST("", func(c echo.Context) error {
		var req ChatIn
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		exchange, err := controller.Advisor.Chat(c.Request().Context(), req.Content)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, exchange)
	})

	g.DELETE("", func(c echo.Context) error {
		if err := storeFrom(c).ClearChatMessages(c.Request().Context()); err != nil {
			return respondError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}
