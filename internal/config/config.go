// SPDX-License-Identifier: MIT

// Package config loads sparkledex settings with the precedence
// environment > config file > defaults, and supports hot reloading
// of the live-applicable subset.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"
)

// Settings is the effective daemon configuration after merging defaults,
// file values and environment overrides.
type Settings struct {
	// Listeners
	Listen        string `yaml:"listen"`
	MetricsListen string `yaml:"metrics_listen"` // empty disables the metrics server

	// Logging
	LogLevel string `yaml:"log_level"`
	Debug    bool   `yaml:"debug"` // panic detail in 500 bodies

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Request rate limiting (httprate, per IP, POST endpoints)
	RateLimit    bool `yaml:"rate_limit"`
	RateLimitRPM int  `yaml:"rate_limit_rpm"`

	// Upload admission token buckets
	UploadRate    float64 `yaml:"upload_rate"`  // tokens per second, global
	UploadBurst   int     `yaml:"upload_burst"` // bucket size, global
	UploadIPRate  float64 `yaml:"upload_ip_rate"`
	UploadIPBurst int     `yaml:"upload_ip_burst"`

	// Network trust
	AllowedOrigins []string `yaml:"allowed_origins"` // empty disables CORS
	TrustedProxies string   `yaml:"trusted_proxies"` // CSV of CIDRs allowed to set X-Forwarded-For

	// HTTP server timeouts
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Tracing
	OTelEnabled  bool    `yaml:"otel_enabled"`
	OTelExporter string  `yaml:"otel_exporter"` // "http" or "grpc"
	OTelEndpoint string  `yaml:"otel_endpoint"`
	OTelSample   float64 `yaml:"otel_sample"`
}

// Defaults returns the baseline settings before file and env merging.
func Defaults() Settings {
	return Settings{
		Listen:          ":8080",
		MetricsListen:   "",
		LogLevel:        "info",
		Debug:           false,
		MaxUploadBytes:  10 << 20,
		RateLimit:       true,
		RateLimitRPM:    120,
		UploadRate:      50,
		UploadBurst:     100,
		UploadIPRate:    5,
		UploadIPBurst:   10,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 10 * time.Second,
		OTelEnabled:     false,
		OTelExporter:    "http",
		OTelEndpoint:    "localhost:4318",
		OTelSample:      1.0,
	}
}

// Validate checks the merged settings and returns the first violation found.
// A failed validation must never replace a previously valid configuration.
func Validate(s Settings) error {
	if err := validateAddr("listen", s.Listen, false); err != nil {
		return err
	}
	if err := validateAddr("metrics_listen", s.MetricsListen, true); err != nil {
		return err
	}
	if _, err := parseLogLevel(s.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if s.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", s.MaxUploadBytes)
	}
	if s.RateLimit && s.RateLimitRPM <= 0 {
		return fmt.Errorf("rate_limit_rpm must be positive when rate limiting is enabled, got %d", s.RateLimitRPM)
	}
	if s.UploadRate <= 0 || s.UploadIPRate <= 0 {
		return fmt.Errorf("upload token rates must be positive (global %v, per-ip %v)", s.UploadRate, s.UploadIPRate)
	}
	if s.UploadBurst <= 0 || s.UploadIPBurst <= 0 {
		return fmt.Errorf("upload token bursts must be positive (global %d, per-ip %d)", s.UploadBurst, s.UploadIPBurst)
	}
	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 || s.IdleTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", s.ShutdownTimeout)
	}
	if s.OTelSample < 0 || s.OTelSample > 1 {
		return fmt.Errorf("otel_sample must be within [0,1], got %v", s.OTelSample)
	}
	if s.OTelEnabled && s.OTelExporter != "http" && s.OTelExporter != "grpc" {
		return fmt.Errorf("otel_exporter must be \"http\" or \"grpc\", got %q", s.OTelExporter)
	}
	if err := validateCIDRList(s.TrustedProxies); err != nil {
		return fmt.Errorf("trusted_proxies: %w", err)
	}
	return nil
}

func validateAddr(name, addr string, optional bool) error {
	if addr == "" {
		if optional {
			return nil
		}
		return fmt.Errorf("%s must not be empty", name)
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("%s %q is not a valid host:port: %w", name, addr, err)
	}
	return nil
}

func validateCIDRList(csv string) error {
	for _, part := range strings.Split(csv, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		if _, _, err := net.ParseCIDR(p); err != nil {
			return fmt.Errorf("invalid CIDR %q: %w", p, err)
		}
	}
	return nil
}

// parseLogLevel accepts the zerolog level names without importing zerolog here;
// the log package owns the actual parsing at apply time.
func parseLogLevel(level string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled", "":
		return strings.ToLower(strings.TrimSpace(level)), nil
	}
	return "", fmt.Errorf("unknown level %q", level)
}
