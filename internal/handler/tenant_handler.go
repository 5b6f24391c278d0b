package handler

import (
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gateway-service/internal/service"
	"gateway-service/pkg/logger"
	"gateway-service/prometheus"
)

// TenantRequest defines the structure for tenant creation requests
type TenantRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
}

type TenantHandler struct {
	svc *service.TenantService
}

func NewTenantHandler(svc *service.TenantService) *TenantHandler {
	return &TenantHandler{svc: svc}
}

// Create handles POST /api/tenants
func (h *TenantHandler) Create(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("create")

	var req TenantRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("invalid tenant payload", zap.Error(err))
		return badRequest(c, "invalid request data")
	}
	if req.Name == "" {
		return badRequest(c, "name is required")
	}
	if _, err := mail.ParseAddress(req.ContactEmail); err != nil {
		return badRequest(c, "contact_email must be a valid email address")
	}

	tenant, err := h.svc.Create(c.Request().Context(), service.CreateTenantInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		return writeServiceError(c, log, err)
	}

	log.Info("tenant created",
		zap.String("tenant_id", tenant.ID),
		zap.String("name", tenant.Name))
	return c.JSON(http.StatusCreated, tenant)
}

// List handles GET /api/tenants
func (h *TenantHandler) List(c echo.Context) error {
	log := logger.FromEcho(c)

	tenants, err := h.svc.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, log, err)
	}
	return c.JSON(http.StatusOK, tenants)
}

// Get handles GET /api/tenants/:id
func (h *TenantHandler) Get(c echo.Context) error {
	log := logger.FromEcho(c)

	tenant, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, log, err)
	}
	return c.JSON(http.StatusOK, tenant)
}

// Delete handles DELETE /api/tenants/:id
func (h *TenantHandler) Delete(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordTenantOperation("delete")

	id := c.Param("id")
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, log, err)
	}

	log.Info("tenant deleted", zap.String("tenant_id", id))
	return c.NoContent(http.StatusNoContent)
}
