// SPDX-License-Identifier: MIT

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func panicHandler() http.Handler {
	return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func TestRecovererGenericBody(t *testing.T) {
	h := Recoverer(func() bool { return false })(panicHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, body, "panic")
	assert.NotContains(t, body, "stack")
}

func TestRecovererDebugBody(t *testing.T) {
	h := Recoverer(func() bool { return true })(panicHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "boom", body["panic"])
	assert.Contains(t, body["stack"], "goroutine")
}

func TestRecovererDebugQueryParam(t *testing.T) {
	// ?debug=1 echoes the traceback even when the config flag is off.
	h := Recoverer(func() bool { return false })(panicHandler())

	req := httptest.NewRequest(http.MethodGet, "/?debug=1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "boom", body["panic"])
	assert.Contains(t, body["stack"], "goroutine")

	// Any other value leaves the generic body.
	req = httptest.NewRequest(http.MethodGet, "/?debug=0", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var plain map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plain))
	assert.NotContains(t, plain, "panic")
}

func TestRecovererNilDebugFunc(t *testing.T) {
	h := Recoverer(nil)(panicHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRecovererPassesThrough(t *testing.T) {
	h := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
