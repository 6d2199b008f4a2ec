// SPDX-License-Identifier: MIT

// Package api implements the HTTP surface of sparkledex: the upload form,
// the JSON extraction API and the operational endpoints. All name logic
// lives in internal/extract; this package is request plumbing around it.
package api

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/sparkledex/sparkledex/internal/api/middleware"
	"github.com/sparkledex/sparkledex/internal/config"
	"github.com/sparkledex/sparkledex/internal/health"
	"github.com/sparkledex/sparkledex/internal/log"
	"github.com/sparkledex/sparkledex/internal/ratelimit"
	"github.com/sparkledex/sparkledex/internal/version"
)

// Server wires handlers, middleware and the upload admission limiter.
// Limits and the debug flag are read from the config holder per request, so
// a hot reload applies to the next request without a restart.
type Server struct {
	holder    *config.Holder
	health    *health.Manager
	admission *ratelimit.Limiter
	trust     atomic.Pointer[proxyTrust]
	startedAt time.Time
}

// New creates the API server from the current configuration.
func New(holder *config.Holder, healthMgr *health.Manager) *Server {
	cfg := holder.Get()
	s := &Server{
		holder:    holder,
		health:    healthMgr,
		admission: ratelimit.New(admissionConfig(cfg)),
		startedAt: time.Now(),
	}
	s.trust.Store(newProxyTrust(cfg.TrustedProxies))
	return s
}

// Handler builds the router. The middleware topology is fixed at build time;
// per-request tunables go through the holder instead.
func (s *Server) Handler() http.Handler {
	cfg := s.holder.Get()

	r := middleware.NewRouter(middleware.StackConfig{
		Debug:                 func() bool { return s.holder.Get().Debug },
		EnableCORS:            len(cfg.AllowedOrigins) > 0,
		AllowedOrigins:        cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        "sparkledex",
		EnableLogging:         true,
	})

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Get("/api/v1/status", s.handleStatus)

	// The POST endpoints additionally pass the per-IP request limiter and
	// the token-bucket admission check inside the handlers.
	r.Group(func(g chi.Router) {
		if cfg.RateLimit {
			g.Use(middleware.UploadRateLimit(cfg.RateLimitRPM))
		}
		g.Post("/", s.handleForm)
		g.Post("/api/v1/extract", s.handleExtract)
	})

	r.NotFound(writeNotFound)
	r.MethodNotAllowed(writeMethodNotAllowed)

	return r
}

// HealthManager exposes the health manager for readiness wiring in the daemon.
func (s *Server) HealthManager() *health.Manager {
	return s.health
}

// Apply applies a reloaded configuration to the running server: log level,
// admission limits and proxy trust. Listener topology changes need a restart
// and are flagged by the config holder.
func (s *Server) Apply(cfg config.Settings) {
	logger := log.WithComponent("api")

	if err := log.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("ignoring invalid log level from reload")
	}
	s.admission.Update(admissionConfig(cfg))
	s.trust.Store(newProxyTrust(cfg.TrustedProxies))

	logger.Info().
		Str(log.FieldEvent, "config.applied").
		Str("log_level", cfg.LogLevel).
		Int64("max_upload_bytes", cfg.MaxUploadBytes).
		Msg("applied reloaded configuration")
}

func (s *Server) clientIP(r *http.Request) string {
	return s.trust.Load().clientIP(r)
}

func admissionConfig(cfg config.Settings) ratelimit.Config {
	return ratelimit.Config{
		GlobalRate:  rate.Limit(cfg.UploadRate),
		GlobalBurst: cfg.UploadBurst,
		PerIPRate:   rate.Limit(cfg.UploadIPRate),
		PerIPBurst:  cfg.UploadIPBurst,
	}
}

// uptime reports whole seconds since the server was constructed.
func (s *Server) uptime() int64 {
	return int64(time.Since(s.startedAt).Seconds())
}

// serviceVersion is what the page footer and status endpoint report.
func serviceVersion() string {
	return version.Version
}
