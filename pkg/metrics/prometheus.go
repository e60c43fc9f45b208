// Package metrics provides Prometheus metrics for the dnacore service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the dnacore service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Alignment Metrics
	alignments       *prometheus.CounterVec
	alignmentLatency *prometheus.HistogramVec
	alignmentCells   prometheus.Histogram

	// Experiment Metrics - simulations, batches and searches
	simulations *prometheus.CounterVec
	variants    *prometheus.CounterVec
	batches     *prometheus.CounterVec
	batchPairs  *prometheus.CounterVec
	searches    *prometheus.CounterVec
	searchHits  prometheus.Histogram
	impacts     *prometheus.CounterVec

	// Cache and Store Metrics
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	cacheEvictions  prometheus.Counter
	cacheSize       prometheus.Gauge
	storedSequences prometheus.Gauge

	// Queue Metrics
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker Metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter
	workerPanics            prometheus.Counter

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "dnacore",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
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
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	// Alignment Metrics
	m.alignments = m.counterVec("alignments_total",
		"Total number of pairwise alignments by algorithm and outcome", "algorithm", "outcome")
	m.alignmentLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "alignment_latency_milliseconds",
			Help:      "Alignment latency in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"algorithm"},
	)
	m.alignmentCells = m.histogram("alignment_matrix_cells",
		"Number of dynamic-programming cells filled per global alignment",
		prometheus.ExponentialBuckets(16, 4, 10))

	// Experiment Metrics
	m.simulations = m.counterVec("simulations_total",
		"Total number of mutation simulations by mutation type and outcome", "mutation_type", "outcome")
	m.variants = m.counterVec("variants_total",
		"Total number of generated variants by mutation type and outcome", "mutation_type", "outcome")
	m.batches = m.counterVec("batches_total",
		"Total number of batch comparisons by algorithm and outcome", "algorithm", "outcome")
	m.batchPairs = m.counterVec("batch_pairs_total",
		"Total number of pairs dispatched by batch comparisons", "algorithm")
	m.searches = m.counterVec("searches_total",
		"Total number of similarity searches by algorithm", "algorithm")
	m.searchHits = m.histogram("search_hits",
		"Number of hits returned per similarity search", []float64{0, 1, 2, 5, 10, 20, 50})
	m.impacts = m.counterVec("impact_assessments_total",
		"Total number of impact assessments by level", "level")

	// Cache and Store Metrics
	m.cacheHits = m.counter("cache_hits_total", "Total number of alignment cache hits")
	m.cacheMisses = m.counter("cache_misses_total", "Total number of alignment cache misses")
	m.cacheEvictions = m.counter("cache_evictions_total", "Total number of alignment cache evictions")
	m.cacheSize = m.gauge("cache_size", "Current number of cached alignments")
	m.storedSequences = m.gauge("stored_sequences", "Current number of sequences in the store")

	// Queue Metrics
	m.queueSize = m.gauge("queue_size", "Current number of queued work units (backlog indicator)")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of work units enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of work units dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")
	m.queueProcessingLatency = m.histogram("queue_processing_latency_milliseconds",
		"Time a work unit waits in the queue in milliseconds", m.histogramBuckets)

	// Worker Metrics
	m.workerCount = m.gauge("worker_count", "Current number of workers (processing capacity)")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers currently running a unit")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds",
		"Worker processing latency in milliseconds", m.histogramBuckets)
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of failed work units")
	m.workerPanics = m.counter("worker_panics_total", "Total number of work units that panicked")

	// HTTP Performance Metrics
	m.httpRequests = m.counterVec("http_requests_total",
		"Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Error Metrics
	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Total number of errors by component", "component", "error_type")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Total number of errors by endpoint", "endpoint", "method", "error_type")

	// System Performance Metrics
	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Alignment Metrics Functions.

// RecordAlignment counts one alignment by algorithm and outcome.
func RecordAlignment(algorithm, outcome string) {
	globalManager.alignments.WithLabelValues(algorithm, outcome).Inc()
}

// RecordAlignmentLatency records alignment latency in milliseconds.
func RecordAlignmentLatency(algorithm string, latencyMs float64) {
	globalManager.alignmentLatency.WithLabelValues(algorithm).Observe(latencyMs)
}

// RecordAlignmentCells records the size of a filled score matrix.
func RecordAlignmentCells(cells float64) {
	globalManager.alignmentCells.Observe(cells)
}

// Experiment Metrics Functions.

// RecordSimulation counts one simulation request.
func RecordSimulation(mutationType, outcome string) {
	globalManager.simulations.WithLabelValues(mutationType, outcome).Inc()
}

// RecordVariant counts one generated variant.
func RecordVariant(mutationType, outcome string) {
	globalManager.variants.WithLabelValues(mutationType, outcome).Inc()
}

// RecordBatch counts one batch comparison and the pairs it dispatched.
func RecordBatch(algorithm, outcome string, pairs int) {
	globalManager.batches.WithLabelValues(algorithm, outcome).Inc()
	if pairs > 0 {
		globalManager.batchPairs.WithLabelValues(algorithm).Add(float64(pairs))
	}
}

// RecordSearch counts one similarity search and its hit count.
func RecordSearch(algorithm string, hits int) {
	globalManager.searches.WithLabelValues(algorithm).Inc()
	globalManager.searchHits.Observe(float64(hits))
}

// RecordImpact counts one impact assessment.
func RecordImpact(level string) {
	globalManager.impacts.WithLabelValues(level).Inc()
}

// Cache and Store Metrics Functions.

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheEviction increments the cache eviction counter.
func RecordCacheEviction() {
	globalManager.cacheEvictions.Inc()
}

// UpdateCacheSize sets the number of cached alignments.
func UpdateCacheSize(size int) {
	globalManager.cacheSize.Set(float64(size))
}

// UpdateStoredSequences sets the number of stored sequences.
func UpdateStoredSequences(count int) {
	globalManager.storedSequences.Set(float64(count))
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records how long a unit waited in the queue.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordWorkerPanic increments the worker panic counter.
func RecordWorkerPanic() {
	globalManager.workerPanics.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
