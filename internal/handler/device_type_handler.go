package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"gateway-service/internal/service"
	"gateway-service/pkg/logger"
)

// DeviceTypeHandler serves the read-only device type reference data
type DeviceTypeHandler struct {
	svc *service.DeviceService
}

func NewDeviceTypeHandler(svc *service.DeviceService) *DeviceTypeHandler {
	return &DeviceTypeHandler{svc: svc}
}

// List handles GET /api/device-types
func (h *DeviceTypeHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	types, err := h.svc.ListDeviceTypes(c.Request().Context())
	if err != nil {
		return writeServiceError(c, log, err)
	}
	return c.JSON(http.StatusOK, types)
}

// Get handles GET /api/device-types/:id
func (h *DeviceTypeHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest(c, "id must be a positive integer")
	}

	dt, err := h.svc.GetDeviceType(c.Request().Context(), uint(id))
	if err != nil {
		return writeServiceError(c, log, err)
	}
	return c.JSON(http.StatusOK, dt)
}
