package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gateway-service/internal/model"
	"gateway-service/internal/service"
	"gateway-service/pkg/logger"
	"gateway-service/prometheus"
)

// DeviceRequest defines the structure for device creation requests
type DeviceRequest struct {
	UID          int64  `json:"uid"`
	Vendor       string `json:"vendor"`
	Status       string `json:"status"`
	DeviceTypeID uint   `json:"device_type_id"`
}

// UpdateDeviceRequest carries partial device updates; the uid and the
// gateway assignment are not mutable through this path.
type UpdateDeviceRequest struct {
	Vendor       *string `json:"vendor"`
	Status       *string `json:"status"`
	DeviceTypeID *uint   `json:"device_type_id"`
}

type DeviceHandler struct {
	svc *service.DeviceService
}

func NewDeviceHandler(svc *service.DeviceService) *DeviceHandler {
	return &DeviceHandler{svc: svc}
}

// Create handles POST /api/devices
func (h *DeviceHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordDeviceOperation("create")

	var req DeviceRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid device payload", zap.Error(err))
		return badRequest(c, "invalid request data")
	}
	if req.UID <= 0 {
		return badRequest(c, "uid must be a positive integer")
	}
	if req.Vendor == "" {
		return badRequest(c, "vendor is required")
	}
	if req.DeviceTypeID == 0 {
		return badRequest(c, "device_type_id is required")
	}
	status := model.DeviceStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		return badRequest(c, "status must be one of online, offline, maintenance")
	}

	dev, err := h.svc.Add(c.Request().Context(), service.AddDeviceInput{
		UID:          req.UID,
		Vendor:       req.Vendor,
		Status:       status,
		DeviceTypeID: req.DeviceTypeID,
	})
	if err != nil {
		return writeServiceError(c, log, err)
	}

	log.Info("device created",
		zap.String("device_id", dev.ID),
		zap.Int64("uid", dev.UID),
		zap.String("vendor", dev.Vendor))
	return c.JSON(http.StatusCreated, dev)
}

// List handles GET /api/devices
func (h *DeviceHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	devices, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, log, err)
	}
	return c.JSON(http.StatusOK, devices)
}

// Get handles GET /api/devices/:id
func (h *DeviceHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)

	dev, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, log, err)
	}
	return c.JSON(http.StatusOK, dev)
}

// Update handles PATCH /api/devices/:id
func (h *DeviceHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordDeviceOperation("update")

	var req UpdateDeviceRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid device payload", zap.Error(err))
		return badRequest(c, "invalid request data")
	}
	var status *model.DeviceStatus
	if req.Status != nil {
		s := model.DeviceStatus(*req.Status)
		if !s.Valid() {
			return badRequest(c, "status must be one of online, offline, maintenance")
		}
		status = &s
	}

	dev, err := h.svc.Update(c.Request().Context(), c.Param("id"), service.UpdateDeviceInput{
		Vendor:       req.Vendor,
		Status:       status,
		DeviceTypeID: req.DeviceTypeID,
	})
	if err != nil {
		return writeServiceError(c, log, err)
	}

	log.Info("device updated", zap.String("device_id", dev.ID))
	return c.JSON(http.StatusOK, dev)
}

// Delete handles DELETE /api/devices/:id
func (h *DeviceHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordDeviceOperation("delete")

	id := c.Param("id")
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, log, err)
	}

	log.Info("device deleted", zap.String("device_id", id))
	return c.NoContent(http.StatusNoContent)
}
