package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/domain"
)

// Hybrid prefers the store and falls back to on-demand generation.
//
// Store availability is checked once, on first use, and never re-evaluated:
// a store that comes up mid-run is only picked up by a new process (or a
// new Hybrid after Manager.Close). The check ignores the first caller's
// cancellation and runs under its own timeout, so the cached answer is
// about the store and not about that caller.
type Hybrid struct {
	store        Provider
	fallback     Provider
	logger       *zap.Logger
	hooks        MetricHooks
	checkTimeout time.Duration

	checkOnce      sync.Once
	storeAvailable bool
}

// DefaultCheckTimeout bounds the availability check unless WithCheckTimeout
// says otherwise.
const DefaultCheckTimeout = 2 * time.Second

// HybridOption configures a Hybrid.
type HybridOption func(*Hybrid)

// WithCheckTimeout bounds the one-time availability check.
func WithCheckTimeout(d time.Duration) HybridOption {
	return func(h *Hybrid) {
		if d > 0 {
			h.checkTimeout = d
		}
	}
}

func NewHybrid(store, fallback Provider, logger *zap.Logger, hooks MetricHooks, opts ...HybridOption) *Hybrid {
	h := &Hybrid{
		store:        store,
		fallback:     fallback,
		logger:       logger,
		hooks:        hooks.withDefaults(),
		checkTimeout: DefaultCheckTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hybrid) ensureChecked(ctx context.Context) bool {
	h.checkOnce.Do(func() {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.checkTimeout)
		defer cancel()
		h.storeAvailable = h.store.Available(checkCtx)
		if h.storeAvailable {
			h.logger.Info("store connected - using pool-based data")
		} else {
			h.logger.Info("store unavailable - falling back to generator")
		}
	})
	return h.storeAvailable
}

// StoreConnected reports the cached check result.
func (h *Hybrid) StoreConnected(ctx context.Context) bool {
	return h.ensureChecked(ctx)
}

// Store returns the store-backed provider.
func (h *Hybrid) Store() Provider { return h.store }

func (h *Hybrid) Acquire(ctx context.Context, p domain.Pool) (domain.TestUser, bool) {
	return h.take(ctx, p, Provider.Acquire)
}

func (h *Hybrid) Consume(ctx context.Context, p domain.Pool) (domain.TestUser, bool) {
	return h.take(ctx, p, Provider.Consume)
}

func (h *Hybrid) take(
	ctx context.Context,
	p domain.Pool,
	op func(Provider, context.Context, domain.Pool) (domain.TestUser, bool),
) (domain.TestUser, bool) {
	log := h.logger.With(zap.String("pool", p.Name))

	if h.ensureChecked(ctx) {
		if u, ok := op(h.store, ctx, p); ok {
			h.hooks.OnAcquired(p.Name, SourceStore)
			log.Debug("acquired from store", zap.String("email", u.Email))
			return u, true
		}
		log.Info("store pool empty, falling back to generator")
	}

	u, ok := op(h.fallback, ctx, p)
	if !ok {
		h.hooks.OnMiss(p.Name)
		log.Warn("no fixture available")
		return domain.TestUser{}, false
	}
	u.Origin = domain.OriginFallback
	h.hooks.OnAcquired(p.Name, SourceFallback)
	log.Info("created via fallback generator", zap.String("email", u.Email))
	return u, true
}

// Release returns a store item to its pool. Items created by the fallback
// path are dropped: they were never in the store and are not added to it.
func (h *Hybrid) Release(ctx context.Context, p domain.Pool, u domain.TestUser) bool {
	if !h.ensureChecked(ctx) {
		return false
	}
	if u.Origin == domain.OriginFallback {
		h.logger.Debug("dropping fallback-created fixture on release",
			zap.String("pool", p.Name), zap.String("email", u.Email))
		return false
	}
	if !h.store.Release(ctx, p, u) {
		return false
	}
	h.hooks.OnReleased(p.Name)
	return true
}

// Transfer reclassifies an item, e.g. a fresh identity that a test has
// just registered. It only has an effect on the store path.
func (h *Hybrid) Transfer(ctx context.Context, from, to domain.Pool, u domain.TestUser) {
	if !h.ensureChecked(ctx) {
		return
	}
	h.store.Transfer(ctx, from, to, u)
}

func (h *Hybrid) Stats(ctx context.Context, p domain.Pool) domain.PoolStats {
	if h.ensureChecked(ctx) {
		return h.store.Stats(ctx, p)
	}
	return h.fallback.Stats(ctx, p)
}

// Available is always true: the fallback can generate when the store cannot.
func (h *Hybrid) Available(ctx context.Context) bool {
	h.ensureChecked(ctx)
	return true
}

func (h *Hybrid) Close() error {
	return errors.Join(h.store.Close(), h.fallback.Close())
}

// compile-time check that Hybrid implements Provider
var _ Provider = (*Hybrid)(nil)
