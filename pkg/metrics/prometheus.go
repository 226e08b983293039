// Package metrics provides Prometheus metrics for the portfolio service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes used as the "outcome" label.
const (
	OutcomeAccepted    = "accepted"
	OutcomeInvalid     = "invalid"
	OutcomeSpam        = "spam"
	OutcomeRateLimited = "rate_limited"
	OutcomeStoreError  = "store_error"
)

// Names and buckets of the process wide collectors.
const (
	Namespace = "portfolio"
	Subsystem = "api"
)

// LatencyBucketsMs suits the millisecond histograms. prometheus.DefBuckets
// assumes seconds.
var LatencyBucketsMs = []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000} //nolint:gochecknoglobals // shared bucket layout

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Submissions
	submissions       *prometheus.CounterVec
	storeWriteLatency prometheus.Histogram
	storedRecords     prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByType        *prometheus.CounterVec

	// Theme alerts
	alertsBySeverity *prometheus.CounterVec
	alertDeliveries  *prometheus.CounterVec
	alertQueueSize   prometheus.Gauge
	alertQueueCap    prometheus.Gauge
	notifications    *prometheus.CounterVec

	// Client vitals reported by the monitor
	vitals *prometheus.GaugeVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(
		WithNamespace(Namespace),
		WithSubsystem(Subsystem),
		WithHistogramBuckets(LatencyBucketsMs),
		WithPrometheusRegistry(customRegistry),
	)
}

// NewManager creates a metrics manager and registers its collectors.
// Without options collector names carry no prefix.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.submissions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_total",
		Help:      "Portfolio request submissions by outcome",
	}, []string{"outcome"})

	m.storeWriteLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_write_latency_milliseconds",
		Help:      "Latency of the submission file read-modify-write in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storedRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stored_records",
		Help:      "Number of submission records in the store after the last write",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByType = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_type_total",
		Help:      "Total number of errors by type",
	}, []string{"error_type", "severity"})

	m.alertsBySeverity = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "theme_alerts_total",
		Help:      "Theme monitor alerts by severity",
	}, []string{"severity"})

	m.alertDeliveries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "theme_alert_deliveries_total",
		Help:      "Alert forwarding attempts by result",
	}, []string{"result"})

	m.alertQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alert_queue_size",
		Help:      "Alerts waiting for delivery",
	})

	m.alertQueueCap = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alert_queue_capacity",
		Help:      "Maximum alert queue capacity",
	})

	m.notifications = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_total",
		Help:      "Notifications raised by the UI store by type",
	}, []string{"type"})

	m.vitals = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "client_vitals",
		Help:      "Latest client performance snapshot values (fps, memory_bytes, lcp_ms, fid_ms, cls)",
	}, []string{"metric"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordSubmission increments the submission counter for an outcome.
func (m *Manager) RecordSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

// RecordStoreWriteLatency records one store write in milliseconds.
func (m *Manager) RecordStoreWriteLatency(latencyMs float64) {
	m.storeWriteLatency.Observe(latencyMs)
}

// UpdateStoredRecords sets the stored record count.
func (m *Manager) UpdateStoredRecords(count int) {
	m.storedRecords.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByType records an error with type and severity labels.
func (m *Manager) RecordErrorByType(errorType, severity string) {
	m.errorsByType.WithLabelValues(errorType, severity).Inc()
}

// RecordAlert counts a theme alert of the given severity.
func (m *Manager) RecordAlert(severity string) {
	m.alertsBySeverity.WithLabelValues(severity).Inc()
}

// RecordAlertDelivery counts a forwarding attempt; result is "ok" or "failed".
func (m *Manager) RecordAlertDelivery(result string) {
	m.alertDeliveries.WithLabelValues(result).Inc()
}

// UpdateAlertQueue sets the alert queue gauges.
func (m *Manager) UpdateAlertQueue(size, capacity int) {
	m.alertQueueSize.Set(float64(size))
	m.alertQueueCap.Set(float64(capacity))
}

// RecordNotification counts a UI notification by type.
func (m *Manager) RecordNotification(kind string) {
	m.notifications.WithLabelValues(kind).Inc()
}

// UpdateVital sets one client vital gauge.
func (m *Manager) UpdateVital(metric string, value float64) {
	m.vitals.WithLabelValues(metric).Set(value)
}

// UpdateSystem sets the process memory and goroutine gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int) {
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// Global helpers.

// RecordSubmission increments the global submission counter.
func RecordSubmission(outcome string) { globalManager.RecordSubmission(outcome) }

// RecordStoreWriteLatency records a store write on the global manager.
func RecordStoreWriteLatency(latencyMs float64) { globalManager.RecordStoreWriteLatency(latencyMs) }

// UpdateStoredRecords sets the global stored record gauge.
func UpdateStoredRecords(count int) { globalManager.UpdateStoredRecords(count) }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordErrorByType records an error on the global manager.
func RecordErrorByType(errorType, severity string) { globalManager.RecordErrorByType(errorType, severity) }

// RecordAlert counts an alert on the global manager.
func RecordAlert(severity string) { globalManager.RecordAlert(severity) }

// RecordAlertDelivery counts an alert delivery on the global manager.
func RecordAlertDelivery(result string) { globalManager.RecordAlertDelivery(result) }

// UpdateAlertQueue sets the global alert queue gauges.
func UpdateAlertQueue(size, capacity int) { globalManager.UpdateAlertQueue(size, capacity) }

// RecordNotification counts a notification on the global manager.
func RecordNotification(kind string) { globalManager.RecordNotification(kind) }

// UpdateVital sets a client vital on the global manager.
func UpdateVital(metric string, value float64) { globalManager.UpdateVital(metric, value) }

// UpdateSystem sets the global system gauges.
func UpdateSystem(memoryBytes uint64, goroutines int) {
	globalManager.UpdateSystem(memoryBytes, goroutines)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
