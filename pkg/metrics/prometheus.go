// Package metrics provides Prometheus metrics for the risk engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultNamespace       = "healthtwin"
	defaultSubsystem       = "risk_engine"
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every collector exposed by the service.
type Manager struct {
	namespace       string
	subsystem       string
	latencyBuckets  []float64
	scoreBuckets    []float64
	enabled         bool
	refreshInterval time.Duration
	constLabels     prometheus.Labels
	registry        prometheus.Registerer

	// Scoring
	assessments      *prometheus.CounterVec
	assessmentScore  *prometheus.HistogramVec
	unfitForWork     prometheus.Counter
	validationErrors *prometheus.CounterVec
	duplicates       prometheus.Counter

	// History pipeline
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueDropped      *prometheus.CounterVec
	workerCount       prometheus.Gauge
	historyRecords    prometheus.Counter
	historyErrors     prometheus.Counter
	historyWriteLatMs prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton used by the package-level helpers

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // served by /metrics

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       defaultNamespace,
		subsystem:       defaultSubsystem,
		latencyBuckets:  prometheus.DefBuckets,
		scoreBuckets:    prometheus.LinearBuckets(10, 10, 10), // 0..100 in tens
		enabled:         true,
		refreshInterval: defaultRefreshInterval,
		constLabels:     prometheus.Labels{},
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	constLabels := m.constLabels

	m.assessments = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assessments_total",
		Help:        "Total number of risk assessments by kind and risk level",
		ConstLabels: constLabels,
	}, []string{"kind", "level"})

	m.assessmentScore = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assessment_score",
		Help:        "Distribution of computed risk scores",
		Buckets:     m.scoreBuckets,
		ConstLabels: constLabels,
	}, []string{"kind"})

	m.unfitForWork = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "unfit_for_work_total",
		Help:        "Fatigue assessments that determined the subject unfit for work",
		ConstLabels: constLabels,
	})

	m.validationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "validation_errors_total",
		Help:        "Requests rejected at input validation, by assessment kind",
		ConstLabels: constLabels,
	}, []string{"kind"})

	m.duplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_submissions_total",
		Help:        "Submissions whose idempotency key was already recorded",
		ConstLabels: constLabels,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_size",
		Help:        "Assessments waiting to be written to history",
		ConstLabels: constLabels,
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_capacity",
		Help:        "Maximum number of assessments the history queue holds",
		ConstLabels: constLabels,
	})

	m.queueDropped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "queue_dropped_total",
		Help:        "Assessments not recorded because the queue refused them",
		ConstLabels: constLabels,
	}, []string{"reason"})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "worker_count",
		Help:        "History writer goroutines",
		ConstLabels: constLabels,
	})

	m.historyRecords = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "history_records_total",
		Help:        "Assessments written to the history store",
		ConstLabels: constLabels,
	})

	m.historyErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "history_write_errors_total",
		Help:        "Failed history store writes",
		ConstLabels: constLabels,
	})

	m.historyWriteLatMs = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "history_write_latency_milliseconds",
		Help:        "History store write latency in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: constLabels,
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_requests_total",
		Help:        "Total number of HTTP requests by endpoint and method",
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "http_request_duration_milliseconds",
		Help:        "HTTP request duration in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: constLabels,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_memory_bytes",
		Help:        "Heap bytes allocated",
		ConstLabels: constLabels,
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_goroutines",
		Help:        "Number of goroutines",
		ConstLabels: constLabels,
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     m.latencyBuckets,
		ConstLabels: constLabels,
	})
}

// RecordAssessment counts one assessment and observes its score.
func (m *Manager) RecordAssessment(kind, level string, score float64) {
	if !m.enabled {
		return
	}
	m.assessments.WithLabelValues(kind, level).Inc()
	m.assessmentScore.WithLabelValues(kind).Observe(score)
}

// RecordUnfitForWork counts a failed fitness-for-work determination.
func (m *Manager) RecordUnfitForWork() {
	if m.enabled {
		m.unfitForWork.Inc()
	}
}

// RecordValidationError counts a rejected request.
func (m *Manager) RecordValidationError(kind string) {
	if m.enabled {
		m.validationErrors.WithLabelValues(kind).Inc()
	}
}

// RecordDuplicateSubmission counts a repeated idempotency key.
func (m *Manager) RecordDuplicateSubmission() {
	if m.enabled {
		m.duplicates.Inc()
	}
}

// UpdateQueueSize sets the history queue depth.
func (m *Manager) UpdateQueueSize(size int) {
	if m.enabled {
		m.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the history queue capacity.
func (m *Manager) UpdateQueueCapacity(capacity int) {
	if m.enabled {
		m.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueDropped counts an assessment the queue refused.
func (m *Manager) RecordQueueDropped(reason string) {
	if m.enabled {
		m.queueDropped.WithLabelValues(reason).Inc()
	}
}

// UpdateWorkerCount sets the number of history writers.
func (m *Manager) UpdateWorkerCount(count int) {
	if m.enabled {
		m.workerCount.Set(float64(count))
	}
}

// RecordHistoryWrite observes a successful store write.
func (m *Manager) RecordHistoryWrite(latencyMs float64) {
	if !m.enabled {
		return
	}
	m.historyRecords.Inc()
	m.historyWriteLatMs.Observe(latencyMs)
}

// RecordHistoryError counts a failed store write.
func (m *Manager) RecordHistoryError() {
	if m.enabled {
		m.historyErrors.Inc()
	}
}

// RecordHTTPRequest counts a request and observes its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateSystem sets runtime gauges.
func (m *Manager) UpdateSystem(memoryBytes uint64, goroutines int, avgGCPauseMs float64) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memoryBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
	if avgGCPauseMs > 0 {
		m.systemGCPauseTime.Observe(avgGCPauseMs)
	}
}

// Package-level helpers delegate to the global manager.

// RecordAssessment counts one assessment and observes its score.
func RecordAssessment(kind, level string, score float64) {
	globalManager.RecordAssessment(kind, level, score)
}

// RecordUnfitForWork counts a failed fitness-for-work determination.
func RecordUnfitForWork() { globalManager.RecordUnfitForWork() }

// RecordValidationError counts a rejected request.
func RecordValidationError(kind string) { globalManager.RecordValidationError(kind) }

// RecordDuplicateSubmission counts a repeated idempotency key.
func RecordDuplicateSubmission() { globalManager.RecordDuplicateSubmission() }

// UpdateQueueSize sets the history queue depth.
func UpdateQueueSize(size int) { globalManager.UpdateQueueSize(size) }

// UpdateQueueCapacity sets the history queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.UpdateQueueCapacity(capacity) }

// RecordQueueDropped counts an assessment the queue refused.
func RecordQueueDropped(reason string) { globalManager.RecordQueueDropped(reason) }

// UpdateWorkerCount sets the number of history writers.
func UpdateWorkerCount(count int) { globalManager.UpdateWorkerCount(count) }

// RecordHistoryWrite observes a successful store write.
func RecordHistoryWrite(latencyMs float64) { globalManager.RecordHistoryWrite(latencyMs) }

// RecordHistoryError counts a failed store write.
func RecordHistoryError() { globalManager.RecordHistoryError() }

// RecordHTTPRequest counts a request and observes its duration.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// UpdateSystem sets runtime gauges.
func UpdateSystem(memoryBytes uint64, goroutines int, avgGCPauseMs float64) {
	globalManager.UpdateSystem(memoryBytes, goroutines, avgGCPauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
