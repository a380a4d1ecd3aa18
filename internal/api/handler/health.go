package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/mcoot/arkham-companion/internal/api/response"
)

// HealthHandler reports whether the service and its storage are reachable
type HealthHandler struct {
	check  func(ctx context.Context) error
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler; check may be nil
func NewHealthHandler(check func(ctx context.Context) error, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{check: check, logger: logger}
}

type health struct {
	Status string `json:"status"`
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.check != nil {
		if err := h.check(r.Context()); err != nil {
			h.logger.Warn("health check failed", slog.Any("error", err))
			response.JSON(w, http.StatusServiceUnavailable, health{Status: "unavailable"})
			return
		}
	}
	response.JSON(w, http.StatusOK, health{Status: "ok"})
}
