// Package health provides health check endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Checker is an external dependency whose connectivity gates readiness.
type Checker interface {
	Name() string
	Ping(ctx context.Context) error
}

// Response is the response for liveness check.
type Response struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadinessResponse is the response for readiness check.
type ReadinessResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp string            `json:"timestamp"`
}

// Handlers holds dependencies for health check handlers.
type Handlers struct {
	checkers []Checker
}

// NewHandlers creates health handlers over the configured dependencies.
// With no checkers the service is ready as soon as it is live.
func NewHandlers(checkers ...Checker) *Handlers {
	return &Handlers{checkers: checkers}
}

// LiveHandler handles GET /health/live.
func (h *Handlers) LiveHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyHandler handles GET /health/ready.
func (h *Handlers) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := ReadinessResponse{
		Status: "ok",
		Checks: make(map[string]string, len(h.checkers)),
	}
	for _, c := range h.checkers {
		if err := c.Ping(ctx); err != nil {
			resp.Checks[c.Name()] = "disconnected"
			resp.Status = "unhealthy"
			continue
		}
		resp.Checks[c.Name()] = "connected"
	}
	resp.Timestamp = time.Now().UTC().Format(time.RFC3339)

	status := http.StatusOK
	if resp.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
