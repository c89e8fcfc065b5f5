package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/internal/maintenance"
)

// StatusPoller scans the store on an interval and publishes every pool's
// aggregated counts, e.g. to the Prometheus gauges.
type StatusPoller struct {
	store    maintenance.Store
	interval time.Duration
	logger   *zap.Logger
	publish  func(maintenance.Report)
}

func NewStatusPoller(
	st maintenance.Store,
	interval time.Duration,
	logger *zap.Logger,
	publish func(maintenance.Report),
) *StatusPoller {
	return &StatusPoller{store: st, interval: interval, logger: logger, publish: publish}
}

// Run ticks every interval and publishes a fresh report.
// Stops cleanly when ctx is cancelled.
func (sp *StatusPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(sp.interval)
	defer ticker.Stop()

	sp.logger.Info("status poller started", zap.Duration("interval", sp.interval))
	sp.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			sp.logger.Info("status poller stopping")
			return
		case <-ticker.C:
			sp.poll(ctx)
		}
	}
}

func (sp *StatusPoller) poll(ctx context.Context) {
	report, err := maintenance.Collect(ctx, sp.store)
	if err != nil {
		sp.logger.Warn("status poll failed", zap.Error(err))
		return
	}
	sp.publish(report)
}
