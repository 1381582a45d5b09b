package http

import (
	"ShortLinks-Backend/internal/repository"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// StatsSource exposes recorder statistics for the metrics endpoint.
type StatsSource interface {
	Stats() map[string]interface{}
}

// HealthHandler serves liveness, readiness and metrics endpoints
type HealthHandler struct {
	storage repository.Storage
	stats   StatsSource
	log     *zap.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(storage repository.Storage, stats StatsSource, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		storage: storage,
		stats:   stats,
		log:     log,
	}
}

// HealthResponse is the health check response body
type HealthResponse struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	DatabaseStatus string    `json:"database_status"`
	Uptime         string    `json:"uptime,omitempty"`
}

var startTime = time.Now()

// Health probes storage and reports overall service health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// The probe code never exists; anything but not-found means the
	// storage layer is unreachable.
	dbStatus := "healthy"
	_, err := h.storage.FindShortLink(ctx, "health-check-probe")
	if err != nil && err != repository.ErrCodeNotFound {
		dbStatus = "unhealthy"
		h.log.Error("database health check failed", zap.Error(err))
	}

	status := "healthy"
	statusCode := http.StatusOK
	if dbStatus == "unhealthy" {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:         status,
		Timestamp:      time.Now(),
		DatabaseStatus: dbStatus,
		Uptime:         time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode health response", zap.Error(err))
	}
}

// Ready is the readiness probe endpoint
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error("failed to encode ready response", zap.Error(err))
	}
}

// Metrics reports uptime and click recorder queue statistics
func (h *HealthHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": time.Since(startTime).Seconds(),
		"timestamp":      time.Now(),
	}
	if h.stats != nil {
		metrics["recorder"] = h.stats.Stats()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(metrics); err != nil {
		h.log.Error("failed to encode metrics response", zap.Error(err))
	}
}
