// Package api provides HTTP handlers for the planning API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/pricecache"
	"github.com/Amitava-Data-Science-lab/deposit-saver/internal/store"
)

const healthCheckTimeout = 5 * time.Second

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// HealthHandler reports the health of the API and its dependencies.
type HealthHandler struct {
	repo  store.Repository
	cache *pricecache.Cache
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(repo store.Repository, cache *pricecache.Cache) *HealthHandler {
	return &HealthHandler{repo: repo, cache: cache}
}

// Health returns the health status of the API and its dependencies. An
// unreachable cache only degrades the report; lookups fall back to the
// upstream source, so the service keeps serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"api": "ok"}
	status := "healthy"
	statusCode := http.StatusOK

	if err := h.repo.Ping(ctx); err != nil {
		slog.Error("Health check failed", "dependency", "database", "error", err)
		checks["database"] = "unreachable"
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	if err := h.cache.Ping(ctx); err != nil {
		slog.Warn("Health check cache degraded", "error", err)
		checks["cache"] = "degraded"
		if status == "healthy" {
			status = "degraded"
		}
	} else {
		checks["cache"] = "ok"
	}

	JSON(w, statusCode, map[string]interface{}{
		"status": status,
		"checks": checks,
	})
}

// RegisterHealth registers the health check route.
func (h *HealthHandler) RegisterHealth(r chi.Router) {
	r.Get("/api/health", h.Health)
}
