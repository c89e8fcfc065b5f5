package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/internal/api/handler"
	apimw "github.com/qa-platform/fixturepool/internal/api/middleware"
	"github.com/qa-platform/fixturepool/internal/maintenance"
)

// NewRouter wires the chi router for `poolctl serve`: liveness, Prometheus
// scrape, and the JSON pool status.
func NewRouter(
	st maintenance.Store,
	publish func(maintenance.Report),
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.RequestID)
	r.Use(apimw.RequestLogger(logger))

	hh := handler.NewHealthHandler(st)
	ph := handler.NewPoolsHandler(st, publish, logger)

	r.Get("/health", hh.Health)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/pools", ph.List)
		r.Get("/pools/{name}", ph.Get)
	})

	return r
}
