package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bobeautician/advisor/internal/api/response"
)

const (
	readinessTimeout    = 2 * time.Second
	readinessRetryAfter = 5 * time.Second
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler. db may be nil; Ready then always succeeds.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check handles GET /health.
func (h *HealthHandler) Check(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health check response", "error", err)
	}
}

// Chat handles GET /api/chat/health.
func (h *HealthHandler) Chat(w http.ResponseWriter, _ *http.Request) {
	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "chat"})
}

// Ready handles GET /ready: 503 when the catalog database does not answer a ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := h.db.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "readiness check failed", "error", err)
			response.RespondServiceUnavailable(w, "database unavailable", readinessRetryAfter)

			return
		}
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
