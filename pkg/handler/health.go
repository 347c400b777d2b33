package handler

import (
	"net/http"

	"github.com/AccelByte/extend-buddy-progression/pkg/state"
)

// Health serves the liveness check backed by a Redis ping
type Health struct {
	checker *state.HealthChecker
}

// NewHealth creates the health handler
func NewHealth(checker *state.HealthChecker) *Health {
	return &Health{checker: checker}
}

// ServeHTTP handles GET /healthz
func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.checker.Status(r.Context())
	if !status.Healthy {
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
