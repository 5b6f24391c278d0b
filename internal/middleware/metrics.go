package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"gateway-service/prometheus"
)

// MetricsMiddleware records request count and duration for every route
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		duration := time.Since(start).Seconds()
		method := c.Request().Method
		path := c.Path()
		status := strconv.Itoa(c.Response().Status)

		prometheus.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		prometheus.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration)

		return err
	}
}
