// Package handler is the HTTP adapter around the fleet services: it binds
// and validates request payloads, invokes the core operations and maps
// domain errors onto status codes.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gateway-service/internal/service"
)

// writeServiceError maps a domain error onto the HTTP response: NotFound
// becomes 404, Conflict becomes 409, everything else is an opaque 500.
func writeServiceError(c echo.Context, log *zap.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		log.Error("unexpected service error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
