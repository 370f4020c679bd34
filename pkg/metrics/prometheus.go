// Package metrics provides Prometheus metrics for the jobscout search service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector exported by jobscout.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Search requests
	searchesTotal    *prometheus.CounterVec
	searchLatency    prometheus.Histogram
	searchResults    prometheus.Histogram
	stageLatency     *prometheus.HistogramVec
	pipelineFailures prometheus.Counter

	// Upstream sources
	sourceRequests *prometheus.CounterVec
	sourceLatency  *prometheus.HistogramVec
	sourceRetries  *prometheus.CounterVec
	sourceJobs     *prometheus.CounterVec

	// Geocoding cache
	geocodeLookups *prometheus.CounterVec
	geocodeCache   prometheus.Gauge

	// Fetch pool
	poolQueueSize   prometheus.Gauge
	poolWorkerCount prometheus.Gauge
	poolRejected    prometheus.Counter

	// Saved searches
	savedSearchRuns *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByEndpoint    *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "jobscout",
		subsystem:        "search",
		histogramBuckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: m.histogramBuckets, ConstLabels: m.constLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.searchesTotal = m.counterVec("requests_total", "Search requests by outcome", "outcome")
	m.searchLatency = m.histogram("latency_milliseconds", "End-to-end search latency in milliseconds", m.histogramBuckets)
	m.searchResults = m.histogram("results", "Jobs surviving filtering per search",
		[]float64{0, 1, 5, 10, 25, 50, 100, 250, 500})
	m.stageLatency = m.histogramVec("stage_latency_milliseconds", "Pipeline stage latency in milliseconds", "stage")
	m.pipelineFailures = m.counter("pipeline_failures_total", "Searches whose pipeline stages failed")

	m.sourceRequests = m.counterVec("source_requests_total", "Upstream source calls by outcome", "source", "outcome")
	m.sourceLatency = m.histogramVec("source_latency_milliseconds", "Upstream source call latency in milliseconds", "source")
	m.sourceRetries = m.counterVec("source_retries_total", "Retried upstream source calls", "source")
	m.sourceJobs = m.counterVec("source_jobs_total", "Raw jobs returned by upstream sources", "source")

	m.geocodeLookups = m.counterVec("geocode_lookups_total", "Geocode cache lookups by result", "result")
	m.geocodeCache = m.gauge("geocode_cache_entries", "Entries held by the in-process geocode cache")

	m.poolQueueSize = m.gauge("fetch_queue_size", "Fetch tasks waiting in the pool queue")
	m.poolWorkerCount = m.gauge("fetch_worker_count", "Fetch workers in the pool")
	m.poolRejected = m.counter("fetch_rejected_total", "Fetch tasks rejected by queue backpressure")

	m.savedSearchRuns = m.counterVec("saved_search_runs_total", "Scheduled saved-search refreshes by outcome", "outcome")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds",
		"endpoint", "method", "status_code")
	m.errorsByEndpoint = m.counterVec("http_errors_total", "HTTP errors by endpoint and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// RecordSearch records one finished search request.
func RecordSearch(outcome string, latencyMs float64, results int) {
	if !globalManager.enabled {
		return
	}
	globalManager.searchesTotal.WithLabelValues(outcome).Inc()
	globalManager.searchLatency.Observe(latencyMs)
	globalManager.searchResults.Observe(float64(results))
}

// RecordStageLatency records the duration of one pipeline stage.
func RecordStageLatency(stage string, latencyMs float64) {
	globalManager.stageLatency.WithLabelValues(stage).Observe(latencyMs)
}

// RecordPipelineFailure counts a search whose core stages failed.
func RecordPipelineFailure() {
	globalManager.pipelineFailures.Inc()
}

// RecordSourceRequest records an upstream call outcome and latency.
func RecordSourceRequest(source, outcome string, latencyMs float64) {
	globalManager.sourceRequests.WithLabelValues(source, outcome).Inc()
	globalManager.sourceLatency.WithLabelValues(source).Observe(latencyMs)
}

// RecordSourceRetry counts one retry against a source.
func RecordSourceRetry(source string) {
	globalManager.sourceRetries.WithLabelValues(source).Inc()
}

// RecordSourceJobs adds the number of raw jobs a source returned.
func RecordSourceJobs(source string, n int) {
	globalManager.sourceJobs.WithLabelValues(source).Add(float64(n))
}

// RecordGeocodeLookup counts a geocode cache lookup: hit, miss, shared, error.
func RecordGeocodeLookup(result string) {
	globalManager.geocodeLookups.WithLabelValues(result).Inc()
}

// UpdateGeocodeCacheSize sets the geocode cache entry gauge.
func UpdateGeocodeCacheSize(n int) {
	globalManager.geocodeCache.Set(float64(n))
}

// UpdateQueueSize sets the fetch queue length gauge.
func UpdateQueueSize(size int) {
	globalManager.poolQueueSize.Set(float64(size))
}

// UpdateWorkerCount sets the fetch worker gauge.
func UpdateWorkerCount(count int) {
	globalManager.poolWorkerCount.Set(float64(count))
}

// RecordFetchRejected counts a fetch task refused by the queue.
func RecordFetchRejected() {
	globalManager.poolRejected.Inc()
}

// RecordSavedSearchRun counts a scheduled saved-search refresh.
func RecordSavedSearchRun(outcome string) {
	globalManager.savedSearchRuns.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest increments the HTTP requests counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorsByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// UpdateSystemMemoryUsage updates system memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount updates goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom registry used for metrics exposure.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
