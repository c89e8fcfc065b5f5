package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/qa-platform/fixturepool/domain"
	"github.com/qa-platform/fixturepool/internal/maintenance"
)

// PoolsHandler serves the aggregated pool status as JSON. Every request
// rescans the store and republishes the gauges, so /metrics is never older
// than the last status request.
type PoolsHandler struct {
	store   maintenance.Store
	publish func(maintenance.Report)
	logger  *zap.Logger
}

// NewPoolsHandler constructs the handler. publish is optional (nil = no-op).
func NewPoolsHandler(st maintenance.Store, publish func(maintenance.Report), logger *zap.Logger) *PoolsHandler {
	if publish == nil {
		publish = func(maintenance.Report) {}
	}
	return &PoolsHandler{store: st, publish: publish, logger: logger}
}

// List handles GET /api/v1/pools
func (h *PoolsHandler) List(w http.ResponseWriter, r *http.Request) {
	report, ok := h.collect(w, r)
	if !ok {
		return
	}
	if report.Pools == nil {
		report.Pools = []maintenance.PoolReport{}
	}
	respondJSON(w, http.StatusOK, report)
}

// Get handles GET /api/v1/pools/{name}
func (h *PoolsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	report, ok := h.collect(w, r)
	if !ok {
		return
	}
	pr, found := report.Pool(name)
	if !found {
		mapError(w, fmt.Errorf("%q: %w", name, domain.ErrPoolNotFound))
		return
	}
	respondJSON(w, http.StatusOK, pr)
}

func (h *PoolsHandler) collect(w http.ResponseWriter, r *http.Request) (maintenance.Report, bool) {
	if err := h.store.Ping(r.Context()); err != nil {
		mapError(w, err)
		return maintenance.Report{}, false
	}
	report, err := maintenance.Collect(r.Context(), h.store)
	if err != nil {
		h.logger.Error("collect pool status", zap.Error(err))
		mapError(w, err)
		return maintenance.Report{}, false
	}
	h.publish(report)
	return report, true
}
