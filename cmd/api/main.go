package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"wardrobeapi/backup"
	"wardrobeapi/cache"
	"wardrobeapi/config"
	"wardrobeapi/controllers"
	"wardrobeapi/dbhelper"
	"wardrobeapi/kvstore"
	"wardrobeapi/logger"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/store"
)

const release = "wardrobeapi@1.0.0"

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.SetGlobal(logger.New("wardrobe-api", !cfg.IsProduction()))

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      string(cfg.Environment),
			Release:          release,
			TracesSampleRate: 1.0,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("sentry.Init")
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := dbhelper.SetupDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	st := store.New(db)

	kv, err := kvstore.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.KVBackend).Msg("failed to open cache store")
	}
	defer kv.Close()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}

	var ai services.Completer
	switch cfg.AIBackend {
	case "genai":
		client, err := services.NewGenAIClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.TryOnModel)
		switch {
		case errors.Is(err, services.ErrNotConfigured):
			log.Warn().Msg("GEMINI_API_KEY not set, AI features will report missing configuration")
			ai = services.NewRelayClient("", "", cfg.GeminiModel, cfg.TryOnModel, cfg.AITimeout)
		case err != nil:
			log.Fatal().Err(err).Msg("failed to create genai client")
		default:
			ai = client
		}
	default:
		ai = services.NewRelayClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.TryOnModel, cfg.AITimeout)
	}

	seq := cache.NewSequencer()
	weather := services.NewWeatherService(
		services.NewQWeatherClient(cfg.QWeatherBaseURL, cfg.QWeatherAPIKey, cfg.WeatherTimeout),
		cache.NewWeatherSlot[models.WeatherData](kv, cache.WithLocation(loc)),
		seq,
		cfg.LocationTimeout,
		services.WithLocation(loc),
	)
	advisor := services.NewAdvisorService(
		st,
		ai,
		weather,
		cache.NewRecommendationCache(kv, cache.WithLocation(loc)),
		cache.NewDailySlot[models.DailyRecommendation](kv, cache.WithLocation(loc)),
		seq,
		services.WithLocation(loc),
	)

	deps := controllers.Dependencies{
		Store:      st,
		Weather:    weather,
		Advisor:    advisor,
		AI:         ai,
		AIModel:    cfg.GeminiModel,
		TryOnModel: cfg.TryOnModel,
		Backup:     backup.NewService(st),
	}
	if cfg.BackupBucket != "" {
		deps.Archiver, err = backup.NewR2Archiver(ctx, cfg.R2AccountID, cfg.R2AccessKeyID, cfg.R2AccessKeySecret, cfg.BackupBucket)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure backup archive")
		}
	}
	if cfg.DefaultLat != nil && cfg.DefaultLon != nil {
		deps.DefaultLocation = &models.Coordinates{Latitude: *cfg.DefaultLat, Longitude: *cfg.DefaultLon}
	}

	e := controllers.SetupServer(deps)
	e.Debug = !cfg.IsProduction()
	e.Use(controllers.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	go func() {
		if err := e.Start(cfg.HTTPAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
