package controllers

import (
	"net/http"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"wardrobeapi/backup"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/store"
)

const maxRequestBody = "30M"

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// Dependencies are the services the HTTP surface is built from. Archiver and
// DefaultLocation are optional.
type Dependencies struct {
	Store           *store.Store
	Weather         *services.WeatherService
	Advisor         *services.AdvisorService
	AI              services.Completer
	AIModel         string
	TryOnModel      string
	Backup          *backup.Service
	Archiver        *backup.Archiver
	DefaultLocation *models.Coordinates
}

func SetupServer(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: models.NewValidator()}
	e.HTTPErrorHandler = httpErrorHandler

	e.Use(StoreMiddleware(deps.Store))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	limit := middleware.BodyLimit(maxRequestBody)

	clothesController := ClothesController{Advisor: deps.Advisor}
	clothesController.ClothingRoutes(e.Group("/clothes", limit))

	profileController := ProfileController{}
	profileController.ProfileRoutes(e.Group("/profile", limit))

	historyController := HistoryController{}
	historyController.HistoryRoutes(e.Group("/history", limit))

	chatController := ChatController{Advisor: deps.Advisor}
	chatController.ChatRoutes(e.Group("/chat", limit))

	advisorController := AdvisorController{
		Weather:         deps.Weather,
		Advisor:         deps.Advisor,
		DefaultLocation: deps.DefaultLocation,
	}
	advisorController.WeatherRoutes(e.Group("/weather", limit))
	advisorController.RecommendationRoutes(e.Group("/recommendations", limit))
	advisorController.TryOnRoutes(e.Group("/tryon", limit))

	backupController := BackupController{Backup: deps.Backup, Archiver: deps.Archiver}
	backupController.BackupRoutes(e.Group("/backup", middleware.BodyLimit(maxBackupBody)))

	relayController := RelayController{
		AI:         deps.AI,
		Weather:    deps.Weather,
		Model:      deps.AIModel,
		TryOnModel: deps.TryOnModel,
	}
	relayController.RelayRoutes(e.Group("/api", limit))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	return e
}
