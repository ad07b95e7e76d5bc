package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"wardrobeapi/models"
)

type ProfileController struct {
}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("", func(c echo.Context) error {
		profile, err := storeFrom(c).GetUserProfile(c.Request().Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, profile)
	})

	g.PUT("", func(c echo.Context) error {
		var profile models.UserProfile
		if err := bindAndValidate(c, &profile); err != nil {
			return err
		}
		st := storeFrom(c)
		if _, err := st.SaveUserProfile(c.Request().Context(), &profile); err != nil {
			return respondError(c, err)
		}
		saved, err := st.GetUserProfile(c.Request().Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, saved)
	})
}
