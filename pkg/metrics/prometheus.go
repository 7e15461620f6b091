// Package metrics provides Prometheus metrics for the diagnostics logger.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Delivery latencies are sub-millisecond in practice.
var defaultBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 50}

// Manager manages all Prometheus metrics for the diagnostics logger.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Record delivery
	recordsDelivered *prometheus.CounterVec
	deliveryLatency  prometheus.Histogram

	// Subscription lifecycle
	listenersRegistered *prometheus.CounterVec
	capabilityMissing   *prometheus.CounterVec
	milestonesIgnored   *prometheus.CounterVec
	lifecycleState      prometheus.Gauge

	// Replay
	replayRuns    prometheus.Counter
	replayErrors  prometheus.Counter
	scenarioSteps prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ampdiag",
		subsystem:        "diagnostics",
		histogramBuckets: defaultBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.recordsDelivered = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_delivered_total",
			Help:      "Total number of diagnostic records handed to the sink by event id and level",
		},
		[]string{"event_id", "level"},
	)

	m.deliveryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "delivery_latency_milliseconds",
		Help:      "Time spent inside the sink callback in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.listenersRegistered = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "listeners_registered_total",
			Help:      "Total number of listeners registered on the player by target and event",
		},
		[]string{"target", "event"},
	)

	m.capabilityMissing = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "capability_missing_total",
			Help:      "Optional player capabilities found absent at subscription time",
		},
		[]string{"capability"},
	)

	m.milestonesIgnored = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "milestones_ignored_total",
			Help:      "Lifecycle milestones fired outside their expected state",
		},
		[]string{"milestone"},
	)

	m.lifecycleState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lifecycle_state",
		Help:      "Last lifecycle state reached (0 uninitialized, 1 ready, 2 metadata loaded)",
	})

	m.replayRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_runs_total",
		Help:      "Total number of scenario replays started",
	})

	m.replayErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "replay_errors_total",
		Help:      "Total number of scenario replays that failed",
	})

	m.scenarioSteps = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scenario_steps_total",
		Help:      "Total number of scenario steps applied to the simulated player",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_bytes",
		Help:      "Heap bytes allocated",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Number of running goroutines",
	})

	m.systemGCPauseTime = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "gc_pause_milliseconds",
		Help:      "Average GC pause time in milliseconds",
	})
}

// RecordDelivered increments the delivered records counter.
func RecordDelivered(eventID string, level int) {
	globalManager.recordsDelivered.WithLabelValues(eventID, strconv.Itoa(level)).Inc()
}

// RecordDeliveryLatency records time spent in the sink callback.
func RecordDeliveryLatency(latencyMs float64) {
	globalManager.deliveryLatency.Observe(latencyMs)
}

// RecordListenerRegistered increments the listener registrations counter.
func RecordListenerRegistered(target, event string) {
	globalManager.listenersRegistered.WithLabelValues(target, event).Inc()
}

// RecordCapabilityMissing counts an absent optional capability.
func RecordCapabilityMissing(capability string) {
	globalManager.capabilityMissing.WithLabelValues(capability).Inc()
}

// RecordMilestoneIgnored counts a milestone fired outside its source state.
func RecordMilestoneIgnored(milestone string) {
	globalManager.milestonesIgnored.WithLabelValues(milestone).Inc()
}

// UpdateLifecycleState sets the last reached lifecycle state.
func UpdateLifecycleState(state int) {
	globalManager.lifecycleState.Set(float64(state))
}

// RecordReplayRun increments the replay runs counter.
func RecordReplayRun() {
	globalManager.replayRuns.Inc()
}

// RecordReplayError increments the replay errors counter.
func RecordReplayError() {
	globalManager.replayErrors.Inc()
}

// RecordScenarioStep increments the applied scenario steps counter.
func RecordScenarioStep() {
	globalManager.scenarioSteps.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateSystemMemoryUsage sets the allocated heap bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// UpdateSystemGCPauseTime sets the average GC pause time.
func UpdateSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Set(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
