// Package metrics provides Prometheus metrics for the analytics core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Ingestion metrics
	jumpsRecorded    prometheus.Counter
	workoutsRecorded prometheus.Counter
	eventsDuplicate  prometheus.Counter
	eventsRejected   *prometheus.CounterVec

	// Derived-state metrics
	snapshotsRefreshed prometheus.Counter
	refreshDuration    prometheus.Histogram
	unlocksFired       *prometheus.CounterVec
	trackedUsers       prometheus.Gauge

	// Leaderboard metrics
	leaderboardQueries   prometheus.Counter
	leaderboardCacheHits prometheus.Counter

	// Queue and worker metrics
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueEnqueueError *prometheus.CounterVec
	workerCount       prometheus.Gauge
	workerErrors      prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "airtime",
		subsystem:        "analytics",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.jumpsRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "jumps_recorded_total",
		Help: "Total number of jump events accepted into the log",
	})
	m.workoutsRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "workouts_recorded_total",
		Help: "Total number of workout events accepted into the log",
	})
	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_duplicate_total",
		Help: "Total number of resubmitted event ids absorbed as no-ops",
	})
	m.eventsRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "events_rejected_total",
		Help: "Total number of rejected writes by reason",
	}, []string{"reason"})

	m.snapshotsRefreshed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "snapshots_refreshed_total",
		Help: "Total number of derived-state recomputations",
	})
	m.refreshDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "refresh_duration_milliseconds",
		Help:    "Histogram of replay-and-refresh latency in milliseconds",
		Buckets: m.histogramBuckets,
	})
	m.unlocksFired = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "achievement_unlocks_total",
		Help: "Total number of achievement unlocks by rarity",
	}, []string{"rarity"})
	m.trackedUsers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "tracked_users",
		Help: "Number of users with cached derived state",
	})

	m.leaderboardQueries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "leaderboard_queries_total",
		Help: "Total number of leaderboard reads",
	})
	m.leaderboardCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "leaderboard_cache_hits_total",
		Help: "Total number of leaderboard reads served from cache",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_queue_size",
		Help: "Current number of queued refresh tasks",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_queue_capacity",
		Help: "Configured capacity of the refresh queue",
	})
	m.queueEnqueueError = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "refresh_queue_enqueue_errors_total",
		Help: "Total number of refused enqueues by reason",
	}, []string{"reason"})
	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_count",
		Help: "Number of refresh workers",
	})
	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "worker_errors_total",
		Help: "Total number of failed refresh attempts",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "http_requests_total",
		Help: "Total number of HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name:    "http_request_duration_milliseconds",
		Help:    "Histogram of HTTP request latency in milliseconds",
		Buckets: m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})
}

// GetRegistry returns the registry backing the global manager, for serving
// over HTTP.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers on the global manager.

func RecordJumpRecorded()    { globalManager.jumpsRecorded.Inc() }
func RecordWorkoutRecorded() { globalManager.workoutsRecorded.Inc() }
func RecordEventDuplicate()  { globalManager.eventsDuplicate.Inc() }
func RecordEventRejected(reason string) {
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}

func RecordSnapshotRefreshed() { globalManager.snapshotsRefreshed.Inc() }
func RecordRefreshDuration(ms float64) {
	globalManager.refreshDuration.Observe(ms)
}
func RecordUnlock(rarity string) {
	globalManager.unlocksFired.WithLabelValues(rarity).Inc()
}
func UpdateTrackedUsers(n int) { globalManager.trackedUsers.Set(float64(n)) }

func RecordLeaderboardQuery()    { globalManager.leaderboardQueries.Inc() }
func RecordLeaderboardCacheHit() { globalManager.leaderboardCacheHits.Inc() }

func UpdateQueueSize(n int)     { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueError.WithLabelValues(reason).Inc()
}
func UpdateWorkerCount(n int) { globalManager.workerCount.Set(float64(n)) }
func RecordWorkerError()      { globalManager.workerErrors.Inc() }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}
