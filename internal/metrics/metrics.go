package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/qa-platform/fixturepool/internal/maintenance"
)

// PoolMetrics counts what fixture consumers observe. They are registered in
// the process that runs a pool.Manager (the test suite), since that is the
// only place acquires and releases happen.
type PoolMetrics struct {
	Acquired      *prometheus.CounterVec
	Released      *prometheus.CounterVec
	AcquireMisses *prometheus.CounterVec
	StoreErrors   *prometheus.CounterVec
}

// NewPoolMetrics registers the consumer-side counters with reg.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func NewPoolMetrics(reg prometheus.Registerer) *PoolMetrics {
	m := &PoolMetrics{
		Acquired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fixture_acquired_total",
			Help: "Fixtures handed out, by pool and by source (store or fallback).",
		}, []string{"pool", "source"}),

		Released: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fixture_released_total",
			Help: "Fixtures returned to the store.",
		}, []string{"pool"}),

		AcquireMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fixture_acquire_misses_total",
			Help: "Requests that got no fixture from either the store or the fallback.",
		}, []string{"pool"}),

		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fixture_store_errors_total",
			Help: "Store operations that failed and were absorbed by the pool layer.",
		}, []string{"op"}),
	}

	reg.MustRegister(m.Acquired, m.Released, m.AcquireMisses, m.StoreErrors)
	return m
}

// Hooks returns the metric callback functions expected by pool.MetricHooks.
// Centralises the prometheus observation calls so the pool providers stay metrics-agnostic.
func (m *PoolMetrics) Hooks() (
	onAcquired func(pool, source string),
	onMiss func(pool string),
	onReleased func(pool string),
	onStoreError func(op string),
) {
	onAcquired = func(pool, source string) {
		m.Acquired.WithLabelValues(pool, source).Inc()
	}
	onMiss = func(pool string) {
		m.AcquireMisses.WithLabelValues(pool).Inc()
	}
	onReleased = func(pool string) {
		m.Released.WithLabelValues(pool).Inc()
	}
	onStoreError = func(op string) {
		m.StoreErrors.WithLabelValues(op).Inc()
	}
	return
}

// StatusMetrics describes the store as the maintenance side sees it:
// aggregated pool sizes and cleanup activity. `poolctl serve` registers these.
type StatusMetrics struct {
	PoolAvailable  *prometheus.GaugeVec
	PoolProcessing *prometheus.GaugeVec
	CleanupActions *prometheus.CounterVec
}

func NewStatusMetrics(reg prometheus.Registerer) *StatusMetrics {
	m := &StatusMetrics{
		PoolAvailable: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fixture_pool_available",
			Help: "Items waiting in the pool at the last status scan.",
		}, []string{"pool"}),

		PoolProcessing: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "fixture_pool_processing",
			Help: "Items claimed across all workers at the last status scan.",
		}, []string{"pool"}),

		CleanupActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fixture_cleanup_actions_total",
			Help: "Processing lists handled by cleanup, by action.",
		}, []string{"action"}),
	}

	reg.MustRegister(m.PoolAvailable, m.PoolProcessing, m.CleanupActions)
	return m
}

// ObservePool sets the gauges for one pool.
func (m *StatusMetrics) ObservePool(name string, available, processing int64) {
	m.PoolAvailable.WithLabelValues(name).Set(float64(available))
	m.PoolProcessing.WithLabelValues(name).Set(float64(processing))
}

// ObserveReport sets the gauges for every pool in r.
func (m *StatusMetrics) ObserveReport(r maintenance.Report) {
	for _, p := range r.Pools {
		m.ObservePool(p.Pool, p.Available, p.Processing)
	}
}

// ObserveCleanup counts one cleanup action.
func (m *StatusMetrics) ObserveCleanup(a maintenance.Action) {
	m.CleanupActions.WithLabelValues(string(a)).Inc()
}
