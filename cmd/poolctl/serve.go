package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/internal/api"
	"github.com/qa-platform/fixturepool/internal/maintenance"
	"github.com/qa-platform/fixturepool/internal/metrics"
	"github.com/qa-platform/fixturepool/internal/worker"
)

func newServeCmd(a *app) *cobra.Command {
	var reconcile bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose pool status over HTTP (/health, /metrics, /api/v1/pools)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			m := metrics.NewStatusMetrics(reg)
			publish := m.ObserveReport

			// ---- background jobs ----
			workerCtx, cancelWorkers := context.WithCancel(ctx)
			defer cancelWorkers()

			runners := []worker.Runner{
				worker.NewStatusPoller(a.store, 15*time.Second, a.logger, publish),
			}
			if reconcile {
				cleaner := maintenance.NewCleaner(a.store, a.logger)
				runners = append(runners, worker.NewReconciler(cleaner, a.cfg.CleanupInterval, a.logger, m.ObserveCleanup))
			}
			jobs := worker.NewGroup(runners...)
			jobs.Start(workerCtx)

			// ---- HTTP server ----
			srv := &http.Server{
				Addr:              ":" + a.cfg.StatusHTTPPort,
				Handler:           api.NewRouter(a.store, publish, reg, a.logger),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("status server starting", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			// ---- graceful shutdown ----
			select {
			case <-ctx.Done():
				a.logger.Info("shutdown signal received")
			case err := <-errCh:
				cancelWorkers()
				jobs.Wait()
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error("HTTP server shutdown error", zap.Error(err))
			}

			cancelWorkers()
			jobs.Wait()

			a.logger.Info("status server stopped cleanly")
			return nil
		},
	}

	cmd.Flags().BoolVar(&reconcile, "reconcile", false, "also run cleanup every CLEANUP_INTERVAL")
	return cmd
}
