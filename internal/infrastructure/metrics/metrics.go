// Package metrics provides Prometheus metrics for the farming weight service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace string
	registry  prometheus.Registerer

	// Provider metrics
	providerFetches      *prometheus.CounterVec
	providerFetchLatency prometheus.Histogram
	providerRateLimited  prometheus.Counter
	circuitState         prometheus.Gauge

	// Cache metrics
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions prometheus.Counter

	// Snapshot metrics
	snapshotMerges    prometheus.Counter
	snapshotFallbacks prometheus.Counter

	// Leaderboard metrics
	leaderboardSubmissions *prometheus.CounterVec
	boardUpdates           prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(customRegistry)
}

// NewManager creates a metrics manager registered on the given registry.
func NewManager(registry prometheus.Registerer) *Manager {
	m := &Manager{
		namespace: "farmhand",
		registry:  registry,
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.providerFetches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "provider_fetches_total",
			Help:      "Total number of provider fetches by outcome",
		},
		[]string{"outcome"},
	)

	m.providerFetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "provider_fetch_latency_milliseconds",
		Help:      "Histogram of provider fetch latency in milliseconds",
		Buckets:   []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	m.providerRateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "provider_rate_limited_total",
		Help:      "Total number of rate limit responses from the provider",
	})

	m.circuitState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "provider_circuit_state",
		Help:      "Circuit breaker state (0 closed, 1 open, 2 half-open)",
	})

	m.cacheHits = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits by cache name",
		},
		[]string{"cache"},
	)

	m.cacheMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses by cache name",
		},
		[]string{"cache"},
	)

	m.cacheEvictions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "cache_evictions_total",
		Help:      "Total number of idle entries evicted from result caches",
	})

	m.snapshotMerges = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "snapshot_merges_total",
		Help:      "Total number of snapshot reconciliations performed",
	})

	m.snapshotFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "snapshot_fallbacks_total",
		Help:      "Total number of requests served from the persisted snapshot after a transient fetch failure",
	})

	m.leaderboardSubmissions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      "leaderboard_submissions_total",
			Help:      "Total number of leaderboard submissions by result",
		},
		[]string{"result"},
	)

	m.boardUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "leaderboard_board_updates_total",
		Help:      "Total number of board writes after a changed submission",
	})
}

// RecordProviderFetch records a fetch attempt with its outcome label
// ("success", "not_found", "transient", "error").
func RecordProviderFetch(outcome string) {
	globalManager.providerFetches.WithLabelValues(outcome).Inc()
}

// RecordProviderFetchLatency records fetch latency in milliseconds.
func RecordProviderFetchLatency(latencyMs float64) {
	globalManager.providerFetchLatency.Observe(latencyMs)
}

// RecordProviderRateLimited increments the rate limited counter.
func RecordProviderRateLimited() {
	globalManager.providerRateLimited.Inc()
}

// UpdateCircuitState sets the circuit breaker state gauge.
func UpdateCircuitState(state int) {
	globalManager.circuitState.Set(float64(state))
}

// RecordCacheHit increments the hit counter for a named cache.
func RecordCacheHit(cache string) {
	globalManager.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter for a named cache.
func RecordCacheMiss(cache string) {
	globalManager.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordCacheEvictions adds to the eviction counter after a sweep.
func RecordCacheEvictions(n int) {
	globalManager.cacheEvictions.Add(float64(n))
}

// RecordSnapshotMerge increments the reconciliation counter.
func RecordSnapshotMerge() {
	globalManager.snapshotMerges.Inc()
}

// RecordSnapshotFallback increments the fallback counter.
func RecordSnapshotFallback() {
	globalManager.snapshotFallbacks.Inc()
}

// RecordLeaderboardSubmission records a submission with its result label
// ("no_change", "reclaimed", "ranked", "record").
func RecordLeaderboardSubmission(result string) {
	globalManager.leaderboardSubmissions.WithLabelValues(result).Inc()
}

// RecordBoardUpdate increments the board write counter.
func RecordBoardUpdate() {
	globalManager.boardUpdates.Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
