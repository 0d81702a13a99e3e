package handler

import (
	"context"
	"net/http"
	"time"

	"aa-consent-gateway/internal/repository"
	"aa-consent-gateway/pkg/logger"
)

const (
	healthProbeKey     = "__health_check__"
	healthProbeTTL     = 5 * time.Second
	healthProbeTimeout = 5 * time.Second
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store     repository.SessionStore
	backend   string
	logger    *logger.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store repository.SessionStore, backend string, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		store:     store,
		backend:   backend,
		logger:    log,
		startTime: time.Now(),
	}
}

// DependencyStatus is the health of one backing service
type DependencyStatus struct {
	Status  string  `json:"status"`
	Backend string  `json:"backend,omitempty"`
	Error   *string `json:"error"`
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status       string                      `json:"status"`
	Service      string                      `json:"service"`
	Timestamp    string                      `json:"timestamp"`
	Uptime       string                      `json:"uptime"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

// CheckHealth handles GET /health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	store := DependencyStatus{Status: "OK", Backend: h.backend}
	if err := repository.Probe(ctx, h.store, healthProbeKey, healthProbeTTL); err != nil {
		h.logger.Error("Session store health check failed", "error", err)
		msg := err.Error()
		store.Status = "UNHEALTHY"
		store.Error = &msg
	}

	healthy := store.Error == nil
	statusCode := http.StatusOK
	status := "OK"
	if !healthy {
		statusCode = http.StatusServiceUnavailable
		status = "UNHEALTHY"
	}

	sendJSON(w, statusCode, HealthResponse{
		Status:    status,
		Service:   ServiceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Dependencies: map[string]DependencyStatus{
			"session_store": store,
		},
	})
}
