package handler

import (
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/qa-platform/fixturepool/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// Store connectivity problems are a 503 with remediation text, never a 500.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPoolNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		respondError(w, http.StatusServiceUnavailable,
			"cannot connect to store; start Redis with: docker-compose up -d redis")
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
