package services

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotConfigured means provider credentials are missing.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrUpstreamFailure matches every *UpstreamError.
	ErrUpstreamFailure = errors.New("upstream failure")
	// ErrMalformedAIResponse matches every *MalformedResponseError.
	ErrMalformedAIResponse = errors.New("malformed AI response")
	ErrLocationUnavailable = errors.New("location unavailable")
	ErrTimeout             = errors.New("timed out")

	ErrInvalidInput     = errors.New("invalid input")
	ErrProfileRequired  = errors.New("user profile required")
	ErrNotEnoughClothes = errors.New("not enough clothes in wardrobe")
)

// UpstreamError is a non-success reply of an external provider.
type UpstreamError struct {
	Provider   string
	StatusCode int
	// Code is the provider's own status code when it reports one in the body.
	Code string
	Body string
}

func (e *UpstreamError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: upstream status %d, code %s: %s", e.Provider, e.StatusCode, e.Code, e.Body)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstreamFailure
}

// MalformedResponseError is an AI reply that does not match the expected JSON.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed AI response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedAIResponse
}

// requestError classifies a transport failure of provider.
func requestError(provider string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%s: %w: %v", provider, ErrTimeout, err)
	}
	return fmt.Errorf("%s request: %w", provider, err)
}

// reportCacheFailure logs a failed cache write. Cache failures never fail the
// request that produced the value.
func reportCacheFailure(err error, key string) {
	if err == nil {
		return
	}
	log.Warn().Err(err).Str("key", key).Msg("cache write failed, continuing without cache")
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("cache_key", key)
		sentry.CaptureException(err)
	})
}
