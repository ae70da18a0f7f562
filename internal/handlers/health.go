package handlers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"

	"client-feedback-admin/internal/logger"
)

const healthCheckTimeout = 3 * time.Second

// HealthCheck probes one dependency
type HealthCheck func(ctx context.Context) error

// ComponentHealth is the result of one probe
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string                      `json:"status"`
	Timestamp  time.Time                   `json:"timestamp"`
	Components map[string]*ComponentHealth `json:"components"`
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	logger *logger.Logger
	checks map[string]HealthCheck
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger *logger.Logger, checks map[string]HealthCheck) *HealthHandler {
	if checks == nil {
		checks = map[string]HealthCheck{}
	}
	return &HealthHandler{
		logger: logger,
		checks: checks,
	}
}

// RegisterRoutes registers the unauthenticated probe routes
func (h *HealthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HandleHealthCheck).Methods("GET")
	router.HandleFunc("/health/live", h.HandleLivenessProbe).Methods("GET")
	router.HandleFunc("/health/ready", h.HandleReadinessProbe).Methods("GET")
}

// HandleHealthCheck reports every component
func (h *HealthHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	components, healthy := h.run(r.Context())

	response := HealthResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Components: components,
	}

	status := http.StatusOK
	if !healthy {
		response.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	writeJSONResponse(w, status, response)
}

// HandleLivenessProbe returns 200 while the process is serving
func (h *HealthHandler) HandleLivenessProbe(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// HandleReadinessProbe returns 200 only when every dependency answers
func (h *HealthHandler) HandleReadinessProbe(w http.ResponseWriter, r *http.Request) {
	if _, healthy := h.run(r.Context()); !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("Service Unavailable"))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}

func (h *HealthHandler) run(ctx context.Context) (map[string]*ComponentHealth, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	components := make(map[string]*ComponentHealth, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			healthy = false
			h.logger.WithField("component", name).WithError(err).Warn("Health check failed")
			components[name] = &ComponentHealth{Status: "unhealthy", Message: err.Error()}
			continue
		}
		components[name] = &ComponentHealth{Status: "healthy"}
	}

	return components, healthy
}
