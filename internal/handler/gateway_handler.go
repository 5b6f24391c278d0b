package handler

import (
	"net"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gateway-service/internal/model"
	"gateway-service/internal/service"
	"gateway-service/pkg/logger"
	"gateway-service/prometheus"
)

// GatewayRequest defines the structure for gateway creation requests
type GatewayRequest struct {
	SerialNumber string  `json:"serial_number"`
	Name         string  `json:"name"`
	IPv4Address  string  `json:"ipv4_address"`
	Status       string  `json:"status"`
	Location     string  `json:"location"`
	TenantID     *string `json:"tenant_id"`
}

// UpdateGatewayRequest carries partial gateway updates; absent fields keep
// their stored values. The serial number is not accepted here.
type UpdateGatewayRequest struct {
	Name        *string `json:"name"`
	IPv4Address *string `json:"ipv4_address"`
	Status      *string `json:"status"`
	Location    *string `json:"location"`
}

type GatewayHandler struct {
	svc *service.GatewayService
}

func NewGatewayHandler(svc *service.GatewayService) *GatewayHandler {
	return &GatewayHandler{svc: svc}
}

// Create handles POST /api/gateways
func (h *GatewayHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordGatewayOperation("create")

	var req GatewayRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid gateway payload", zap.Error(err))
		return badRequest(c, "invalid request data")
	}
	if req.SerialNumber == "" || req.Name == "" || req.IPv4Address == "" {
		return badRequest(c, "serial_number, name and ipv4_address are required")
	}
	if !validIPv4(req.IPv4Address) {
		return badRequest(c, "ipv4_address must be a valid IPv4 address")
	}
	status := model.GatewayStatus(req.Status)
	if req.Status != "" && !status.Valid() {
		return badRequest(c, "status must be one of active, inactive, decommissioned")
	}
	tenantID := req.TenantID
	if tenantID != nil && *tenantID == "" {
		tenantID = nil
	}

	gw, err := h.svc.Create(c.Request().Context(), service.CreateGatewayInput{
		SerialNumber: req.SerialNumber,
		Name:         req.Name,
		IPv4Address:  req.IPv4Address,
		Status:       status,
		Location:     req.Location,
		TenantID:     tenantID,
	})
	if err != nil {
		return writeServiceError(c, log, err)
	}

	log.Info("gateway created",
		zap.String("gateway_id", gw.ID),
		zap.String("serial_number", gw.SerialNumber),
		zap.String("ipv4_address", gw.IPv4Address))
	return c.JSON(http.StatusCreated, gw)
}

// List handles GET /api/gateways
func (h *GatewayHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	gateways, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, log, err)
	}
	return c.JSON(http.StatusOK, gateways)
}

// Get handles GET /api/gateways/:id
func (h *GatewayHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)

	detail, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, log, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Update handles PATCH /api/gateways/:id
func (h *GatewayHandler) Update(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordGatewayOperation("update")

	var req UpdateGatewayRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid gateway payload", zap.Error(err))
		return badRequest(c, "invalid request data")
	}
	if req.IPv4Address != nil && !validIPv4(*req.IPv4Address) {
		return badRequest(c, "ipv4_address must be a valid IPv4 address")
	}
	var status *model.GatewayStatus
	if req.Status != nil {
		s := model.GatewayStatus(*req.Status)
		if !s.Valid() {
			return badRequest(c, "status must be one of active, inactive, decommissioned")
		}
		status = &s
	}

	gw, err := h.svc.Update(c.Request().Context(), c.Param("id"), service.UpdateGatewayInput{
		Name:        req.Name,
		IPv4Address: req.IPv4Address,
		Status:      status,
		Location:    req.Location,
	})
	if err != nil {
		return writeServiceError(c, log, err)
	}

	log.Info("gateway updated", zap.String("gateway_id", gw.ID))
	return c.JSON(http.StatusOK, gw)
}

// Delete handles DELETE /api/gateways/:id
func (h *GatewayHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordGatewayOperation("delete")

	id := c.Param("id")
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, log, err)
	}

	prometheus.RemoveAttachedDevices(id)
	log.Info("gateway deleted", zap.String("gateway_id", id))
	return c.NoContent(http.StatusNoContent)
}

// ListDevices handles GET /api/gateways/:id/devices
func (h *GatewayHandler) ListDevices(c echo.Context) error {
	log := logger.FromEcho(c)

	detail, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, log, err)
	}
	return c.JSON(http.StatusOK, detail.Devices)
}

// ListLogs handles GET /api/gateways/:id/logs
func (h *GatewayHandler) ListLogs(c echo.Context) error {
	log := logger.FromEcho(c)

	entries, err := h.svc.ListLogs(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, log, err)
	}
	if entries == nil {
		entries = []model.GatewayLog{}
	}
	return c.JSON(http.StatusOK, entries)
}

// Attach handles POST /api/gateways/:id/devices/:deviceId
func (h *GatewayHandler) Attach(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordGatewayOperation("attach")

	gatewayID := c.Param("id")
	deviceID := c.Param("deviceId")
	detail, err := h.svc.Attach(c.Request().Context(), gatewayID, deviceID)
	if err != nil {
		return writeServiceError(c, log, err)
	}

	prometheus.SetAttachedDevices(gatewayID, float64(detail.DeviceCount))
	log.Info("device attached",
		zap.String("gateway_id", gatewayID),
		zap.String("device_id", deviceID),
		zap.Int("device_count", detail.DeviceCount))
	return c.JSON(http.StatusOK, detail)
}

// Detach handles DELETE /api/gateways/:id/devices/:deviceId
func (h *GatewayHandler) Detach(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordGatewayOperation("detach")

	gatewayID := c.Param("id")
	deviceID := c.Param("deviceId")
	detail, err := h.svc.Detach(c.Request().Context(), gatewayID, deviceID)
	if err != nil {
		return writeServiceError(c, log, err)
	}

	prometheus.SetAttachedDevices(gatewayID, float64(detail.DeviceCount))
	log.Info("device detached",
		zap.String("gateway_id", gatewayID),
		zap.String("device_id", deviceID),
		zap.Int("device_count", detail.DeviceCount))
	return c.JSON(http.StatusOK, detail)
}

func validIPv4(s string) bool {
	ip := net.ParseIP(s)
	return ip != nil && ip.To4() != nil
}
