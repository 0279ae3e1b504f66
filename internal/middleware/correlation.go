// Package middleware provides HTTP middleware components.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type correlationIDKey struct{}

// CorrelationID creates middleware that extracts or generates correlation IDs.
func CorrelationID(headerName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := r.Header.Get(headerName)
			if correlationID == "" {
				correlationID = uuid.New().String()
			}

			w.Header().Set(headerName, correlationID)

			next.ServeHTTP(w, r.WithContext(WithCorrelationID(r.Context(), correlationID)))
		})
	}
}

// WithCorrelationID stores a correlation ID in ctx. The Lambda entrypoint uses
// it with the invocation's request ID.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

// GetCorrelationID retrieves the correlation ID from context.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}
