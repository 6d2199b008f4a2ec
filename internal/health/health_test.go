// SPDX-License-Identifier: MIT

package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthAlwaysOK(t *testing.T) {
	m := NewManager("test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	m.ServeHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Equal(t, "test", resp.Version)
}

func TestReadinessFlag(t *testing.T) {
	m := NewManager("test")

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()
	m.ServeReady(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "not ready before SetReady")

	m.SetReady(true)
	rec = httptest.NewRecorder()
	m.ServeReady(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	m.SetReady(false)
	rec = httptest.NewRecorder()
	m.ServeReady(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "shutdown flips back to not ready")
}

func TestCheckersInfluenceReadiness(t *testing.T) {
	m := NewManager("test")
	m.SetReady(true)

	state := StatusHealthy
	m.RegisterChecker(NewCheckerFunc("dep", func(context.Context) CheckResult {
		return CheckResult{Status: state}
	}))

	resp := m.Ready(context.Background())
	assert.True(t, resp.Ready)
	assert.Equal(t, StatusHealthy, resp.Status)

	state = StatusDegraded
	resp = m.Ready(context.Background())
	assert.True(t, resp.Ready, "degraded still serves traffic")
	assert.Equal(t, StatusDegraded, resp.Status)

	state = StatusUnhealthy
	resp = m.Ready(context.Background())
	assert.False(t, resp.Ready)
	assert.Equal(t, StatusUnhealthy, resp.Status)
}

func TestCheckersInHealthResponse(t *testing.T) {
	m := NewManager("test")
	m.RegisterChecker(NewCheckerFunc("dep", func(context.Context) CheckResult {
		return CheckResult{Status: StatusUnhealthy, Error: "down"}
	}))

	resp := m.Health(context.Background())
	assert.Equal(t, StatusUnhealthy, resp.Status)
	require.Contains(t, resp.Checks, "dep")
	assert.Equal(t, "down", resp.Checks["dep"].Error)
}
