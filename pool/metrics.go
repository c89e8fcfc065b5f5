package pool

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/qa-platform/fixturepool/internal/metrics"
)

// PrometheusHooks registers the fixture counters (fixture_acquired_total,
// fixture_released_total, fixture_acquire_misses_total,
// fixture_store_errors_total) with reg and returns hooks that feed them.
// Call it once per registry in the process that runs the Manager.
func PrometheusHooks(reg prometheus.Registerer) MetricHooks {
	onAcquired, onMiss, onReleased, onStoreError := metrics.NewPoolMetrics(reg).Hooks()
	return MetricHooks{
		OnAcquired:   func(pool string, src Source) { onAcquired(pool, string(src)) },
		OnMiss:       onMiss,
		OnReleased:   onReleased,
		OnStoreError: onStoreError,
	}
}
