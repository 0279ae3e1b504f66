package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// MaintenanceResponse is the response body during maintenance mode.
type MaintenanceResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Maintenance creates middleware that returns 503 for hook routes when
// maintenance mode is enabled. Health and metrics stay reachable, as does any
// request matched by one of the exempt predicates.
func Maintenance(enabled bool, message string, logger *zap.Logger, exempt ...func(*http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled || strings.HasPrefix(r.URL.Path, "/health/") || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}
			for _, match := range exempt {
				if match(r) {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.Info("request rejected due to maintenance mode",
				zap.String("correlation_id", GetCorrelationID(r.Context())),
				zap.String("path", r.URL.Path),
			)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "300")
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(MaintenanceResponse{
				Status:  "unavailable",
				Message: message,
			})
		})
	}
}
