// Package pool hands out reusable test fixtures to test code.
//
// Three Provider implementations share one method set: the store-backed
// provider claims items from the shared Redis lists, the fallback generator
// creates them on demand, and Hybrid prefers the first and degrades to the
// second. Manager binds them to the user-fixture defaults tests ask for.
//
// Providers never return transport errors. Failures are logged and turn
// into "no fixture" outcomes the calling test asserts on.
//
// A test suite builds one Manager in TestMain and leases fixtures through
// package pooltest:
//
//	mgr, err := pool.NewManagerFromEnv(logger, pool.PrometheusHooks(reg))
//	...
//	user := pooltest.AcquireUser(t, mgr) // released when t finishes
package pool

import (
	"context"

	"github.com/qa-platform/fixturepool/domain"
)

// Provider is the capability every fixture source implements.
type Provider interface {
	// Acquire claims one item. ok is false when none could be produced.
	Acquire(ctx context.Context, p domain.Pool) (domain.TestUser, bool)
	// Consume takes one item for good; it is never released.
	Consume(ctx context.Context, p domain.Pool) (domain.TestUser, bool)
	// Release returns a claimed item. It reports whether the item went
	// back into a pool.
	Release(ctx context.Context, p domain.Pool, u domain.TestUser) bool
	// Transfer returns a claimed item into a different pool.
	Transfer(ctx context.Context, from, to domain.Pool, u domain.TestUser)
	Stats(ctx context.Context, p domain.Pool) domain.PoolStats
	Available(ctx context.Context) bool
	Close() error
}

// Source labels where an acquired item came from in metrics.
type Source string

const (
	SourceStore    Source = "store"
	SourceFallback Source = "fallback"
)

// MetricHooks carries the metric callbacks injected at bootstrap so the
// providers stay metrics-agnostic. Nil fields are no-ops; PrometheusHooks
// builds a set backed by counters.
type MetricHooks struct {
	OnAcquired   func(pool string, source Source)
	OnMiss       func(pool string)
	OnReleased   func(pool string)
	OnStoreError func(op string)
}

func (h MetricHooks) withDefaults() MetricHooks {
	if h.OnAcquired == nil {
		h.OnAcquired = func(string, Source) {}
	}
	if h.OnMiss == nil {
		h.OnMiss = func(string) {}
	}
	if h.OnReleased == nil {
		h.OnReleased = func(string) {}
	}
	if h.OnStoreError == nil {
		h.OnStoreError = func(string) {}
	}
	return h
}
