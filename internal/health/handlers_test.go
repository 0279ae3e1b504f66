package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiseuni/identity-hooks/internal/health"
)

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                 { return s.name }
func (s stubChecker) Ping(_ context.Context) error { return s.err }

func TestReadyHandler_NoCheckers(t *testing.T) {
	rec := httptest.NewRecorder()
	health.NewHandlers().ReadyHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyHandler_ReportsEachDependency(t *testing.T) {
	h := health.NewHandlers(
		stubChecker{name: "redis"},
		stubChecker{name: "rabbitmq", err: errors.New("channel closed")},
	)
	rec := httptest.NewRecorder()
	h.ReadyHandler(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp health.ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unhealthy", resp.Status)
	assert.Equal(t, "connected", resp.Checks["redis"])
	assert.Equal(t, "disconnected", resp.Checks["rabbitmq"])
}

func TestLiveHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	health.NewHandlers().LiveHandler(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
