// Package metrics provides Prometheus metrics for the RaidLuck service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Manager manages all Prometheus metrics for the RaidLuck service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Submission pipeline
	submissionsAccepted  prometheus.Counter
	submissionsRejected  *prometheus.CounterVec
	submissionsDuplicate prometheus.Counter

	// Ledger and leaderboard
	ledgerUpdateLatency prometheus.Histogram
	snapshotLatency     prometheus.Histogram
	playerCount         prometheus.Gauge
	ledgerShardCount    prometheus.Gauge

	// Evidence pipeline
	evidenceQueueSize        prometheus.Gauge
	evidenceQueueCapacity    prometheus.Gauge
	evidenceQueueUtilization prometheus.Gauge
	evidenceEnqueued         prometheus.Counter
	evidenceEnqueueErrors    prometheus.Counter
	evidenceDequeued         prometheus.Counter
	evidenceArchived         prometheus.Counter
	evidenceArchiveErrors    prometheus.Counter
	evidenceWorkerCount      prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors by component
	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "raidluck",
		subsystem:        "leaderboard",
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
	factory := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}
	gaugeOpts := func(name, help string) prometheus.GaugeOpts {
		return prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
		}
	}
	histoOpts := func(name, help string) prometheus.HistogramOpts {
		return prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      name,
			Help:      help,
			Buckets:   m.histogramBuckets,
		}
	}

	m.submissionsAccepted = prometheus.NewCounter(factory("submissions_accepted_total", "Total accepted raid submissions"))
	m.submissionsRejected = prometheus.NewCounterVec(factory("submissions_rejected_total", "Total rejected raid submissions by reason"), []string{"reason"})
	m.submissionsDuplicate = prometheus.NewCounter(factory("submissions_duplicate_total", "Total submissions suppressed by idempotency key"))

	m.ledgerUpdateLatency = prometheus.NewHistogram(histoOpts("ledger_update_latency_ms", "Player ledger upsert latency in milliseconds"))
	m.snapshotLatency = prometheus.NewHistogram(histoOpts("snapshot_latency_ms", "Leaderboard snapshot latency in milliseconds"))
	m.playerCount = prometheus.NewGauge(gaugeOpts("players_total", "Number of players tracked in the ledger"))
	m.ledgerShardCount = prometheus.NewGauge(gaugeOpts("ledger_shard_count", "Number of shards in the player ledger"))

	m.evidenceQueueSize = prometheus.NewGauge(gaugeOpts("evidence_queue_size", "Current evidence queue length"))
	m.evidenceQueueCapacity = prometheus.NewGauge(gaugeOpts("evidence_queue_capacity", "Evidence queue capacity"))
	m.evidenceQueueUtilization = prometheus.NewGauge(gaugeOpts("evidence_queue_utilization", "Evidence queue utilization ratio"))
	m.evidenceEnqueued = prometheus.NewCounter(factory("evidence_enqueued_total", "Evidence notes enqueued"))
	m.evidenceEnqueueErrors = prometheus.NewCounter(factory("evidence_enqueue_errors_total", "Evidence notes dropped at enqueue"))
	m.evidenceDequeued = prometheus.NewCounter(factory("evidence_dequeued_total", "Evidence notes dequeued"))
	m.evidenceArchived = prometheus.NewCounter(factory("evidence_archived_total", "Evidence notes written to the journal"))
	m.evidenceArchiveErrors = prometheus.NewCounter(factory("evidence_archive_errors_total", "Evidence journal write failures"))
	m.evidenceWorkerCount = prometheus.NewGauge(gaugeOpts("evidence_worker_count", "Number of evidence journal workers"))

	m.httpRequests = prometheus.NewCounterVec(factory("http_requests_total", "HTTP requests by endpoint, method and status"), []string{"endpoint", "method", "status"})
	m.httpRequestDuration = prometheus.NewHistogramVec(histoOpts("http_request_duration_ms", "HTTP request duration in milliseconds"), []string{"endpoint", "method", "status"})

	m.errorsByComponent = prometheus.NewCounterVec(factory("errors_total", "Errors by component and kind"), []string{"component", "kind"})

	m.systemMemoryUsage = prometheus.NewGauge(gaugeOpts("system_memory_bytes", "Allocated heap bytes"))
	m.systemGoroutineCount = prometheus.NewGauge(gaugeOpts("system_goroutines", "Current goroutine count"))

	m.registry.MustRegister(
		m.submissionsAccepted,
		m.submissionsRejected,
		m.submissionsDuplicate,
		m.ledgerUpdateLatency,
		m.snapshotLatency,
		m.playerCount,
		m.ledgerShardCount,
		m.evidenceQueueSize,
		m.evidenceQueueCapacity,
		m.evidenceQueueUtilization,
		m.evidenceEnqueued,
		m.evidenceEnqueueErrors,
		m.evidenceDequeued,
		m.evidenceArchived,
		m.evidenceArchiveErrors,
		m.evidenceWorkerCount,
		m.httpRequests,
		m.httpRequestDuration,
		m.errorsByComponent,
		m.systemMemoryUsage,
		m.systemGoroutineCount,
	)
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers backed by the global manager.

func RecordSubmissionAccepted()             { globalManager.submissionsAccepted.Inc() }
func RecordSubmissionRejected(reason string) {
	globalManager.submissionsRejected.WithLabelValues(reason).Inc()
}
func RecordSubmissionDuplicate() { globalManager.submissionsDuplicate.Inc() }

func RecordLedgerUpdateLatency(ms float64) { globalManager.ledgerUpdateLatency.Observe(ms) }
func RecordSnapshotLatency(ms float64)     { globalManager.snapshotLatency.Observe(ms) }
func UpdatePlayerCount(n int)              { globalManager.playerCount.Set(float64(n)) }
func UpdateLedgerShardCount(n int)         { globalManager.ledgerShardCount.Set(float64(n)) }

func UpdateEvidenceQueueSize(n int)            { globalManager.evidenceQueueSize.Set(float64(n)) }
func UpdateEvidenceQueueCapacity(n int)        { globalManager.evidenceQueueCapacity.Set(float64(n)) }
func UpdateEvidenceQueueUtilization(r float64) { globalManager.evidenceQueueUtilization.Set(r) }
func RecordEvidenceEnqueued()                  { globalManager.evidenceEnqueued.Inc() }
func RecordEvidenceEnqueueError()              { globalManager.evidenceEnqueueErrors.Inc() }
func RecordEvidenceDequeued()                  { globalManager.evidenceDequeued.Inc() }
func RecordEvidenceArchived()                  { globalManager.evidenceArchived.Inc() }
func RecordEvidenceArchiveError()              { globalManager.evidenceArchiveErrors.Inc() }
func UpdateEvidenceWorkerCount(n int)          { globalManager.evidenceWorkerCount.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

func RecordErrorByComponent(component, kind string) {
	globalManager.errorsByComponent.WithLabelValues(component, kind).Inc()
}

func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }
func UpdateSystemGoroutineCount(n int)     { globalManager.systemGoroutineCount.Set(float64(n)) }
