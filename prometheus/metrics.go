package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"gateway-service/pkg/config"
)

var (
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Database operation metrics
	DBOperationDuration *prometheus.HistogramVec

	// Domain operation counters
	GatewayOperationsCounter *prometheus.CounterVec
	DeviceOperationsCounter  *prometheus.CounterVec
	TenantOperationsCounter  *prometheus.CounterVec

	// Attach/detach state
	AttachedDevicesGauge *prometheus.GaugeVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DBOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	GatewayOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_operations_total",
			Help: "Total number of gateway operations",
		},
		[]string{"operation"},
	)

	DeviceOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_device_operations_total",
			Help: "Total number of device operations",
		},
		[]string{"operation"},
	)

	TenantOperationsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"},
	)

	AttachedDevicesGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_attached_devices",
			Help: "Current number of devices attached to a gateway",
		},
		[]string{"gateway_id"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordGatewayOperation increments the counter for gateway operations
func RecordGatewayOperation(operation string) {
	GatewayOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordDeviceOperation increments the counter for device operations
func RecordDeviceOperation(operation string) {
	DeviceOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordTenantOperation increments the counter for tenant operations
func RecordTenantOperation(operation string) {
	TenantOperationsCounter.WithLabelValues(operation).Inc()
}

// SetAttachedDevices updates the attached-devices gauge for a gateway
func SetAttachedDevices(gatewayID string, count float64) {
	AttachedDevicesGauge.WithLabelValues(gatewayID).Set(count)
}

// RemoveAttachedDevices drops the gauge series when a gateway is deleted
func RemoveAttachedDevices(gatewayID string) {
	AttachedDevicesGauge.DeleteLabelValues(gatewayID)
}
