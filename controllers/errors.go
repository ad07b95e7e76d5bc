package controllers

import (
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"wardrobeapi/backup"
	"wardrobeapi/codec"
	"wardrobeapi/kvstore"
	"wardrobeapi/services"
	"wardrobeapi/store"
)

// statusFor maps domain errors to an HTTP status.
func statusFor(err error) int {
	var upstream *services.UpstreamError
	var codecErr *codec.CodecError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.Code
	case errors.Is(err, services.ErrLocationUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, services.ErrNotConfigured):
		return http.StatusInternalServerError
	case errors.As(err, &upstream), errors.Is(err, services.ErrMalformedAIResponse):
		return http.StatusBadGateway
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, kvstore.ErrNotFound),
		errors.Is(err, backup.ErrArchiveNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalid),
		errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, backup.ErrInvalidDocument),
		errors.As(err, &codecErr):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrProfileRequired),
		errors.Is(err, services.ErrNotEnoughClothes):
		return http.StatusUnprocessableEntity
	case errors.Is(err, kvstore.ErrQuotaExceeded):
		return http.StatusInsufficientStorage
	}
	return http.StatusInternalServerError
}

func errorBody(err error) echo.Map {
	body := echo.Map{"error": err.Error()}
	var upstream *services.UpstreamError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		body["error"] = httpErr.Message
	case errors.Is(err, services.ErrLocationUnavailable):
		body["retry"] = true
	case errors.As(err, &upstream):
		body["upstream_status"] = upstream.StatusCode
		if upstream.Body != "" {
			body["upstream_body"] = upstream.Body
		}
	case errors.Is(err, services.ErrProfileRequired):
		body["code"] = "profile_required"
	case errors.Is(err, services.ErrNotEnoughClothes):
		body["code"] = "not_enough_clothes"
	}
	return body
}

// respondError writes err as {"error": ...}. Server side failures are
// reported to sentry.
func respondError(c echo.Context, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("request failed")
		if hub := sentryecho.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
	}
	return c.JSON(status, errorBody(err))
}

func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if err := respondError(c, err); err != nil {
		log.Error().Err(err).Msg("failed to write error response")
	}
}
