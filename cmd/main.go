package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gateway-service/internal/handler"
	mid "gateway-service/internal/middleware"
	"gateway-service/internal/service"
	"gateway-service/internal/store"
	"gateway-service/pkg/config"
	"gateway-service/pkg/database"
	"gateway-service/pkg/logger"
	"gateway-service/prometheus"
)

func main() {
	// Load configuration (.env is read there if present)
	appConfig, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting gateway-service",
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize Prometheus metrics
	prometheus.InitMetrics(appConfig)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	// Initialize the persistence backend
	var st store.Store
	switch appConfig.Store.Driver {
	case "memory":
		// DB-less mode for local development; state is lost on restart
		st = store.NewMemory()
		log.Warn("Running with the in-memory store, data will not persist")
	default:
		db, err := database.InitDB(appConfig)
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		st = store.NewGorm(db)
		log.Info("Database connection established",
			zap.String("db_host", appConfig.DB.Host),
			zap.String("db_name", appConfig.DB.DBName))
	}

	// Core services
	gatewaySvc := service.NewGatewayService(st, log)
	deviceSvc := service.NewDeviceService(st, log)
	tenantSvc := service.NewTenantService(st, log)

	gatewayHandler := handler.NewGatewayHandler(gatewaySvc)
	deviceHandler := handler.NewDeviceHandler(deviceSvc)
	tenantHandler := handler.NewTenantHandler(tenantSvc)
	deviceTypeHandler := handler.NewDeviceTypeHandler(deviceSvc)

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)

	// Metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Gateway API routes
	gatewayAPI := e.Group("/api/gateways")
	gatewayAPI.GET("", gatewayHandler.List)
	gatewayAPI.POST("", gatewayHandler.Create)
	gatewayAPI.GET("/:id", gatewayHandler.Get)
	gatewayAPI.PATCH("/:id", gatewayHandler.Update)
	gatewayAPI.DELETE("/:id", gatewayHandler.Delete)
	gatewayAPI.GET("/:id/devices", gatewayHandler.ListDevices)
	gatewayAPI.GET("/:id/logs", gatewayHandler.ListLogs)
	gatewayAPI.POST("/:id/devices/:deviceId", gatewayHandler.Attach)
	gatewayAPI.DELETE("/:id/devices/:deviceId", gatewayHandler.Detach)

	// Device API routes
	deviceAPI := e.Group("/api/devices")
	deviceAPI.GET("", deviceHandler.List)
	deviceAPI.POST("", deviceHandler.Create)
	deviceAPI.GET("/:id", deviceHandler.Get)
	deviceAPI.PATCH("/:id", deviceHandler.Update)
	deviceAPI.DELETE("/:id", deviceHandler.Delete)

	// Tenant API routes
	tenantAPI := e.Group("/api/tenants")
	tenantAPI.GET("", tenantHandler.List)
	tenantAPI.POST("", tenantHandler.Create)
	tenantAPI.GET("/:id", tenantHandler.Get)
	tenantAPI.DELETE("/:id", tenantHandler.Delete)

	// Device type reference data
	typeAPI := e.Group("/api/device-types")
	typeAPI.GET("", deviceTypeHandler.List)
	typeAPI.GET("/:id", deviceTypeHandler.Get)

	// Start server
	log.Info("Starting server", zap.String("port", appConfig.Server.Port))
	if err := e.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatal("Server error", zap.Error(err))
	}
}
