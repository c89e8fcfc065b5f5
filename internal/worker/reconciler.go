package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/internal/maintenance"
)

// Cleaner is satisfied by *maintenance.Cleaner.
type Cleaner interface {
	Cleanup(ctx context.Context) (maintenance.CleanupResult, error)
}

// Reconciler runs cleanup on a fixed interval. It is the only thing that
// hands a crashed worker's claims back to the pools; no participant renews
// or reclaims leases on its own.
type Reconciler struct {
	cleaner  Cleaner
	interval time.Duration
	logger   *zap.Logger

	// onAction is injected by main so the reconciler stays metrics-agnostic.
	onAction func(maintenance.Action)
}

// NewReconciler constructs a reconciler. onAction is optional (nil = no-op).
func NewReconciler(
	cleaner Cleaner,
	interval time.Duration,
	logger *zap.Logger,
	onAction func(maintenance.Action),
) *Reconciler {
	if onAction == nil {
		onAction = func(maintenance.Action) {}
	}
	return &Reconciler{cleaner: cleaner, interval: interval, logger: logger, onAction: onAction}
}

// Run reconciles once immediately, then every interval.
// Stops cleanly when ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("cleanup reconciler started", zap.Duration("interval", r.interval))
	r.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("cleanup reconciler stopping")
			return
		case <-ticker.C:
			r.poll(ctx)
		}
	}
}

func (r *Reconciler) poll(ctx context.Context) {
	res, err := r.cleaner.Cleanup(ctx)
	if err != nil {
		r.logger.Error("cleanup pass failed", zap.Error(err))
		return
	}

	for _, e := range res.Entries {
		r.onAction(e.Action)
	}

	if recovered := res.Count(maintenance.ActionRecovered); recovered > 0 {
		r.logger.Info("recovered stale processing lists", zap.Int("count", recovered))
	}
}
