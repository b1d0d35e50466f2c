package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the diagnostic engine service.
type Metrics struct {
	// Request metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	RequestErrors   *prometheus.CounterVec

	// Algorithm metrics
	AbilityEstimationDuration prometheus.Histogram
	CalibrationDuration       prometheus.Histogram
	SelectionDuration         prometheus.Histogram
	PassEvaluationDuration    prometheus.Histogram
	AbilityUpdates            prometheus.Counter
	BatchEstimationSize       prometheus.Histogram

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Database metrics
	DBConnections prometheus.Gauge
	DBQueries     *prometheus.CounterVec
	DBDuration    *prometheus.HistogramVec

	// Business metrics
	SessionsStarted  prometheus.Counter
	ItemsRecommended prometheus.Counter
	ExamsScored      prometheus.Counter
}

// New creates a new metrics instance.
func New() *Metrics {
	return &Metrics{
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "diagnostic_engine_request_duration_seconds",
				Help:    "Duration of engine operation requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "status"},
		),
		RequestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagnostic_engine_requests_total",
				Help: "Total number of engine operation requests",
			},
			[]string{"operation", "status"},
		),
		RequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagnostic_engine_request_errors_total",
				Help: "Total number of request errors",
			},
			[]string{"operation", "error_type"},
		),
		AbilityEstimationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diagnostic_engine_ability_estimation_duration_seconds",
				Help:    "Duration of Newton-based ability estimation",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
			},
		),
		CalibrationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diagnostic_engine_calibration_duration_seconds",
				Help:    "Duration of item difficulty calibration over the response log",
				Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0},
			},
		),
		SelectionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diagnostic_engine_selection_duration_seconds",
				Help:    "Duration of the next-item selection process",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		PassEvaluationDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diagnostic_engine_pass_evaluation_duration_seconds",
				Help:    "Duration of passing-probability evaluation",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		AbilityUpdates: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "diagnostic_engine_ability_updates_total",
				Help: "Total number of ability estimations performed",
			},
		),
		BatchEstimationSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "diagnostic_engine_batch_estimation_size",
				Help:    "Number of users per batch ability estimation call",
				Buckets: []float64{1, 5, 10, 25, 50, 100},
			},
		),
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagnostic_engine_cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagnostic_engine_cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),
		DBConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "diagnostic_engine_db_connections",
				Help: "Current number of database connections",
			},
		),
		DBQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diagnostic_engine_db_queries_total",
				Help: "Total number of database queries",
			},
			[]string{"operation", "status"},
		),
		DBDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "diagnostic_engine_db_duration_seconds",
				Help:    "Duration of database operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		SessionsStarted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "diagnostic_engine_sessions_started_total",
				Help: "Total number of diagnostic sessions started",
			},
		),
		ItemsRecommended: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "diagnostic_engine_items_recommended_total",
				Help: "Total number of items recommended by the selector",
			},
		),
		ExamsScored: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "diagnostic_engine_exams_scored_total",
				Help: "Total number of exam blueprints scored by the pass evaluator",
			},
		),
	}
}

// RecordRequest records request metrics.
func (m *Metrics) RecordRequest(operation, status string, duration time.Duration) {
	m.RequestDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
	m.RequestTotal.WithLabelValues(operation, status).Inc()
}

// RecordError records error metrics.
func (m *Metrics) RecordError(operation, errorType string) {
	m.RequestErrors.WithLabelValues(operation, errorType).Inc()
}

// RecordCacheHit records a cache hit.
func (m *Metrics) RecordCacheHit(cacheType string) {
	m.CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss.
func (m *Metrics) RecordCacheMiss(cacheType string) {
	m.CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordDBOperation records database operation metrics.
func (m *Metrics) RecordDBOperation(operation, status string, duration time.Duration) {
	m.DBQueries.WithLabelValues(operation, status).Inc()
	m.DBDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// Timer helps measure operation duration.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns elapsed time since timer creation.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
