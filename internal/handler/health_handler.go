package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/catalog-api/internal/dto"
)

// HealthChecker проверяет доступность хранилища
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	responder
	checker HealthChecker
}

func NewHealthHandler(checker HealthChecker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		responder: responder{logger: logger},
		checker:   checker,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.checker.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		h.respondJSON(w, http.StatusServiceUnavailable, dto.HealthResponse{
			Status: "unhealthy",
			Error:  err.Error(),
		})
		return
	}

	h.respondJSON(w, http.StatusOK, dto.HealthResponse{
		Status:  "healthy",
		Message: "database connection successful",
	})
}
