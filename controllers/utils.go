package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"wardrobeapi/codec"
	"wardrobeapi/models"
	"wardrobeapi/services"
)

func badRequest(format string, args ...interface{}) error {
	return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

// bindAndValidate binds the request body into req and runs the validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest("Invalid request body")
	}
	return c.Validate(req)
}

func queryBool(c echo.Context, name string) bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	return err == nil && v
}

func queryInt(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, badRequest("invalid %s: %q", name, raw)
	}
	return v, nil
}

// queryCoordinates reads lat and lon. ok is false when neither is given.
func queryCoordinates(c echo.Context) (at models.Coordinates, ok bool, err error) {
	lat, lon := c.QueryParam("lat"), c.QueryParam("lon")
	if lat == "" && lon == "" {
		return at, false, nil
	}
	if lat == "" || lon == "" {
		return at, false, badRequest("缺少经纬度参数")
	}
	if at.Latitude, err = strconv.ParseFloat(lat, 64); err != nil || at.Latitude < -90 || at.Latitude > 90 {
		return at, false, badRequest("invalid lat: %q", lat)
	}
	if at.Longitude, err = strconv.ParseFloat(lon, 64); err != nil || at.Longitude < -180 || at.Longitude > 180 {
		return at, false, badRequest("invalid lon: %q", lon)
	}
	return at, true, nil
}

// locatorFor prefers request coordinates and falls back to the configured
// default position.
func locatorFor(c echo.Context, fallback *models.Coordinates) (services.Locator, error) {
	at, ok, err := queryCoordinates(c)
	if err != nil {
		return nil, err
	}
	if ok {
		return services.FixedLocator(at), nil
	}
	if fallback != nil {
		return services.FixedLocator(*fallback), nil
	}
	return services.NoLocator{}, nil
}

// decodeImage turns a data URL or bare base64 field into an image blob.
func decodeImage(field, token string) (models.Blob, error) {
	blob, err := codec.Decode(token)
	if err != nil {
		return models.Blob{}, err
	}
	if blob.IsEmpty() {
		return blob, nil
	}
	if !codec.IsImage(blob.Data) {
		return models.Blob{}, badRequest("%s is not an image", field)
	}
	blob.MimeType = codec.DetectMimeType(blob.Data)
	return blob, nil
}
