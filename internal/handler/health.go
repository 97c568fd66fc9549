package handler

import (
	"context"
	"net/http"
	"time"

	"cowrite/internal/httputil"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness plus database reachability.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a health handler; db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck is a simple health check endpoint
// GET /health
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	httputil.RespondJSON(w, code, map[string]any{
		"status": status,
		"time":   time.Now().UTC(),
	})
}
