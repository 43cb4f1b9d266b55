// Package metrics provides Prometheus metrics for the ballbyball scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Scoring
	eventsRecorded  prometheus.Counter
	eventsUndone    prometheus.Counter
	eventsDuplicate prometheus.Counter
	eventsRejected  *prometheus.CounterVec
	statsLatency    prometheus.Histogram
	statsErrors     prometheus.Counter

	// Read side
	scorecardCache     *prometheus.CounterVec
	leaderboardUpdates prometheus.Counter
	rankedPlayers      prometheus.Gauge
	liveSubscribers    prometheus.Gauge
	livePublishes      *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// Refresh queue
	queueSize      prometheus.Gauge
	queueCapacity  prometheus.Gauge
	queueEnqueued  prometheus.Counter
	queueDequeued  prometheus.Counter
	queueDropped   *prometheus.CounterVec
	workerCount    prometheus.Gauge
	workerLatency  prometheus.Histogram
	workerErrors   *prometheus.CounterVec
	repoLatency    *prometheus.HistogramVec
	errorsByComp   *prometheus.CounterVec
	systemMemory   prometheus.Gauge
	systemRoutines prometheus.Gauge
	systemGCPause  prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // process-wide metrics

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Configure rebuilds the process metrics from opts on a fresh registry.
// Call it at startup before any handler reads GetRegistry.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	globalManager = NewManager(append(append([]Option{}, opts...), WithPrometheusRegistry(registry))...)
	customRegistry = registry
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "ballbyball",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets, ConstLabels: m.constLabels}
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.eventsRecorded = auto.NewCounter(m.counterOpts("ball_events_recorded_total", "Ball events appended to a match"))
	m.eventsUndone = auto.NewCounter(m.counterOpts("ball_events_undone_total", "Ball events removed by undo"))
	m.eventsDuplicate = auto.NewCounter(m.counterOpts("ball_events_duplicate_total", "Ball event submissions ignored as duplicates"))
	m.eventsRejected = auto.NewCounterVec(m.counterOpts("ball_events_rejected_total", "Ball event submissions rejected"), []string{"reason"})
	m.statsLatency = auto.NewHistogram(m.histogramOpts("stats_refresh_latency_milliseconds", "Time to rebuild a match scorecard"))
	m.statsErrors = auto.NewCounter(m.counterOpts("stats_refresh_errors_total", "Scorecard rebuilds that failed"))

	m.scorecardCache = auto.NewCounterVec(m.counterOpts("scorecard_cache_total", "Scorecard cache lookups by result"), []string{"result"})
	m.leaderboardUpdates = auto.NewCounter(m.counterOpts("leaderboard_updates_total", "Leaderboard entries rewritten"))
	m.rankedPlayers = auto.NewGauge(m.gaugeOpts("leaderboard_players", "Players tracked by the leaderboard"))
	m.liveSubscribers = auto.NewGauge(m.gaugeOpts("live_subscribers", "Open live scorecard websocket connections"))
	m.livePublishes = auto.NewCounterVec(m.counterOpts("live_publishes_total", "Scorecard updates published by sink"), []string{"sink", "result"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})
	m.errorsByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "HTTP errors by endpoint"), []string{"endpoint", "method", "error_type"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("refresh_queue_size", "Pending scorecard refresh jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("refresh_queue_capacity", "Refresh queue capacity"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("refresh_queue_enqueued_total", "Refresh jobs enqueued"))
	m.queueDequeued = auto.NewCounter(m.counterOpts("refresh_queue_dequeued_total", "Refresh jobs dequeued"))
	m.queueDropped = auto.NewCounterVec(m.counterOpts("refresh_queue_dropped_total", "Refresh jobs dropped"), []string{"reason"})
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Refresh workers running"))
	m.workerLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Refresh job processing latency"))
	m.workerErrors = auto.NewCounterVec(m.counterOpts("worker_errors_total", "Refresh job failures by stage"), []string{"stage"})
	m.repoLatency = auto.NewHistogramVec(m.histogramOpts("repository_latency_milliseconds", "Repository operation latency"), []string{"operation"})
	m.errorsByComp = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Errors by component"), []string{"component", "error_type"})

	m.systemMemory = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Heap bytes allocated"))
	m.systemRoutines = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPause = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "system_gc_pause_time_milliseconds",
		Help:        "Average GC pause time in milliseconds",
		Buckets:     []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		ConstLabels: m.constLabels,
	})
}

// RecordEventsRecorded adds n appended ball events.
func RecordEventsRecorded(n int) {
	globalManager.eventsRecorded.Add(float64(n))
}

// RecordEventUndone increments the undo counter.
func RecordEventUndone() {
	globalManager.eventsUndone.Inc()
}

// RecordEventDuplicate increments the duplicate submission counter.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// RecordEventRejected counts a rejected submission, e.g. reason "invalid_kind".
func RecordEventRejected(reason string) {
	globalManager.eventsRejected.WithLabelValues(reason).Inc()
}

// RecordStatsLatency records a scorecard rebuild in milliseconds.
func RecordStatsLatency(latencyMs float64) {
	globalManager.statsLatency.Observe(latencyMs)
}

// RecordStatsError increments the scorecard rebuild failure counter.
func RecordStatsError() {
	globalManager.statsErrors.Inc()
}

// RecordScorecardCache counts a cache lookup; result is "hit", "miss" or "error".
func RecordScorecardCache(result string) {
	globalManager.scorecardCache.WithLabelValues(result).Inc()
}

// RecordLeaderboardUpdate increments the leaderboard update counter.
func RecordLeaderboardUpdate() {
	globalManager.leaderboardUpdates.Inc()
}

// UpdateRankedPlayers sets the number of players on the leaderboard.
func UpdateRankedPlayers(count int) {
	globalManager.rankedPlayers.Set(float64(count))
}

// UpdateLiveSubscribers sets the number of live websocket clients.
func UpdateLiveSubscribers(count int) {
	globalManager.liveSubscribers.Set(float64(count))
}

// RecordLivePublish counts a publish to a sink ("hub", "redis_stream").
func RecordLivePublish(sink, result string) {
	globalManager.livePublishes.WithLabelValues(sink, result).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateQueueSize sets the current refresh queue length.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the refresh queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueDropped counts a job that could not be enqueued.
func RecordQueueDropped(reason string) {
	globalManager.queueDropped.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of refresh workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records refresh job latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerLatency.Observe(latencyMs)
}

// RecordWorkerError counts a failed refresh stage ("load", "stats", "cache", "leaderboard").
func RecordWorkerError(stage string) {
	globalManager.workerErrors.WithLabelValues(stage).Inc()
}

// RecordRepositoryLatency records a repository operation latency.
func RecordRepositoryLatency(operation string, latencyMs float64) {
	globalManager.repoLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComp.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemory.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemRoutines.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPause.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
