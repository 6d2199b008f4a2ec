// SPDX-License-Identifier: MIT

package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sparkledex/sparkledex/internal/config"
	"github.com/sparkledex/sparkledex/internal/extract"
	"github.com/sparkledex/sparkledex/internal/health"
)

// newTestServer builds a Server on defaults, with optional setting tweaks.
func newTestServer(t *testing.T, mutate func(*config.Settings)) (*Server, http.Handler) {
	t.Helper()
	cfg := config.Defaults()
	if mutate != nil {
		mutate(&cfg)
	}
	require.NoError(t, config.Validate(cfg))

	holder := config.NewHolder(cfg, config.NewLoader(""), "")
	hm := health.NewManager("test")
	hm.SetReady(true)

	s := New(holder, hm)
	return s, s.Handler()
}

func postText(t *testing.T, handler http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIndexPage(t *testing.T) {
	_, handler := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<form")
	assert.NotContains(t, rec.Body.String(), "<pre>", "no result block before a submit")
}

func TestFormSubmitTextarea(t *testing.T) {
	_, handler := newTestServer(t, nil)

	form := url.Values{"text": {"✨ Pikachu: male\n✨ pikachu: female"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<pre>")
	assert.Contains(t, body, "Pikachu")
	assert.Contains(t, body, "Pikachu: 1")
}

func TestFormSubmitFileUpload(t *testing.T) {
	_, handler := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "log.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("✨ Corsola \"Sparkles\": female"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Corsola")
	assert.NotContains(t, rec.Body.String(), "Sparkles", "quoted nickname stripped")
}

func TestFormSubmitEmptyRendersPlaceholders(t *testing.T) {
	_, handler := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "(no names found)")
	assert.Contains(t, rec.Body.String(), "(none)")
}

func TestExtractJSON(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rec := postText(t, handler, "/api/v1/extract", "✨ Galarian Corsola: female\n✨ Corsola: male")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var res extract.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, []string{"Galarian Corsola", "Corsola"}, res.Names)
	assert.Empty(t, res.Duplicates)
	assert.Equal(t, 2, res.Tokens)
}

func TestExtractTextFormat(t *testing.T) {
	_, handler := newTestServer(t, nil)

	t.Run("query parameter", func(t *testing.T) {
		rec := postText(t, handler, "/api/v1/extract?format=text", "✨ Pikachu: male")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
		assert.Equal(t, "Pikachu\n\nDuplicates:\n(none)\n", rec.Body.String())
	})

	t.Run("accept header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader("✨ Pikachu: male"))
		req.Header.Set("Content-Type", "text/plain")
		req.Header.Set("Accept", "text/plain")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	})
}

func TestExtractEmptyBody(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rec := postText(t, handler, "/api/v1/extract", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var res extract.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Empty(t, res.Names)
	assert.Empty(t, res.Duplicates)
}

func TestExtractBodyTooLarge(t *testing.T) {
	_, handler := newTestServer(t, func(cfg *config.Settings) {
		cfg.MaxUploadBytes = 16
	})

	rec := postText(t, handler, "/api/v1/extract", strings.Repeat("x", 64))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "size limit")
}

func TestExtractInvalidUTF8Dropped(t *testing.T) {
	_, handler := newTestServer(t, nil)

	rec := postText(t, handler, "/api/v1/extract", "✨ Pika\xffchu: male")
	require.Equal(t, http.StatusOK, rec.Code)

	var res extract.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	// Invalid bytes are dropped before extraction; the rest still parses.
	assert.Equal(t, []string{"Pikachu"}, res.Names)
}

func TestAdmissionLimiter(t *testing.T) {
	_, handler := newTestServer(t, func(cfg *config.Settings) {
		cfg.RateLimit = false // isolate the token-bucket admission check
		cfg.UploadRate = 0.001
		cfg.UploadBurst = 2
		cfg.UploadIPRate = 0.001
		cfg.UploadIPBurst = 2
	})

	for i := 0; i < 2; i++ {
		rec := postText(t, handler, "/api/v1/extract", "✨ Pikachu: male")
		require.Equal(t, http.StatusOK, rec.Code, "request %d within burst", i)
	}

	rec := postText(t, handler, "/api/v1/extract", "✨ Pikachu: male")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "rate limit")
}

func TestStatusEndpoint(t *testing.T) {
	_, handler := newTestServer(t, nil)

	// Serve one extraction first so the totals are non-zero.
	rec := postText(t, handler, "/api/v1/extract", "✨ Pikachu: male")
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var status statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "sparkledex", status.Service)
	assert.NotEmpty(t, status.Version)
	assert.GreaterOrEqual(t, status.ExtractionsTotal, 1.0)
	assert.Contains(t, status.UploadsRejected, "too_large")
}

func TestHealthEndpoints(t *testing.T) {
	s, handler := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.HealthManager().SetReady(false)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDEcho(t *testing.T) {
	_, handler := newTestServer(t, nil)

	t.Run("generated when absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("incoming ID kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	_, handler := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestUnknownRouteAndMethod(t *testing.T) {
	_, handler := newTestServer(t, nil)

	t.Run("404 is JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	})

	t.Run("405 is JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/status", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	})
}

func TestCORSOnlyWhenConfigured(t *testing.T) {
	t.Run("disabled by default", func(t *testing.T) {
		_, handler := newTestServer(t, nil)
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("allowed origin echoed", func(t *testing.T) {
		_, handler := newTestServer(t, func(cfg *config.Settings) {
			cfg.AllowedOrigins = []string{"https://app.example"}
		})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://app.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin gets no header", func(t *testing.T) {
		_, handler := newTestServer(t, func(cfg *config.Settings) {
			cfg.AllowedOrigins = []string{"https://app.example"}
		})
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "https://evil.example")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestApplyReloadedSettings(t *testing.T) {
	s, handler := newTestServer(t, nil)

	cfg := config.Defaults()
	cfg.UploadRate = 0.001
	cfg.UploadBurst = 1
	cfg.UploadIPRate = 0.001
	cfg.UploadIPBurst = 1
	s.Apply(cfg)

	rec := postText(t, handler, "/api/v1/extract", "✨ Pikachu: male")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = postText(t, handler, "/api/v1/extract", "✨ Pikachu: male")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "tightened limits apply immediately")
}
