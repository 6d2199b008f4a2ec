// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment variable names. The daemon namespace is SPARKLEDEX_; the bare
// PORT variable is honoured as a deploy-platform compatibility alias.
const (
	EnvListen          = "SPARKLEDEX_LISTEN"
	EnvMetricsListen   = "SPARKLEDEX_METRICS_LISTEN"
	EnvLogLevel        = "SPARKLEDEX_LOG_LEVEL"
	EnvDebug           = "SPARKLEDEX_DEBUG"
	EnvMaxUploadBytes  = "SPARKLEDEX_MAX_UPLOAD_BYTES"
	EnvRateLimit       = "SPARKLEDEX_RATE_LIMIT"
	EnvRateLimitRPM    = "SPARKLEDEX_RATE_LIMIT_RPM"
	EnvUploadRate      = "SPARKLEDEX_UPLOAD_RATE"
	EnvUploadBurst     = "SPARKLEDEX_UPLOAD_BURST"
	EnvUploadIPRate    = "SPARKLEDEX_UPLOAD_IP_RATE"
	EnvUploadIPBurst   = "SPARKLEDEX_UPLOAD_IP_BURST"
	EnvAllowedOrigins  = "SPARKLEDEX_ALLOWED_ORIGINS"
	EnvTrustedProxies  = "SPARKLEDEX_TRUSTED_PROXIES"
	EnvReadTimeout     = "SPARKLEDEX_READ_TIMEOUT"
	EnvWriteTimeout    = "SPARKLEDEX_WRITE_TIMEOUT"
	EnvIdleTimeout     = "SPARKLEDEX_IDLE_TIMEOUT"
	EnvMaxHeaderBytes  = "SPARKLEDEX_MAX_HEADER_BYTES"
	EnvShutdownTimeout = "SPARKLEDEX_SHUTDOWN_TIMEOUT"
	EnvOTelEnabled     = "SPARKLEDEX_OTEL_ENABLED"
	EnvOTelExporter    = "SPARKLEDEX_OTEL_EXPORTER"
	EnvOTelEndpoint    = "SPARKLEDEX_OTEL_ENDPOINT"
	EnvOTelSample      = "SPARKLEDEX_OTEL_SAMPLE"
	EnvConfigPath      = "SPARKLEDEX_CONFIG"
	EnvPortAlias       = "PORT"
)

// Loader handles configuration loading with precedence ENV > File > Defaults.
type Loader struct {
	configPath string
}

// NewLoader creates a new configuration loader. An empty configPath means
// env-plus-defaults only.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load merges defaults, the optional YAML file and environment overrides,
// then validates the result. The returned Settings are immutable by
// convention; hot reload swaps whole values via Holder.
func (l *Loader) Load() (Settings, error) {
	cfg := Defaults()

	if l.configPath != "" {
		fileCfg, err := LoadFileConfig(l.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := mergeFileConfig(&cfg, fileCfg); err != nil {
			return cfg, fmt.Errorf("merge config file: %w", err)
		}
	}

	mergeEnvConfig(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// mergeFileConfig applies every key present in the file over cfg.
func mergeFileConfig(cfg *Settings, file *FileConfig) error {
	if file.Listen != nil {
		cfg.Listen = *file.Listen
	}
	if file.MetricsListen != nil {
		cfg.MetricsListen = *file.MetricsListen
	}
	if file.LogLevel != nil {
		cfg.LogLevel = *file.LogLevel
	}
	if file.Debug != nil {
		cfg.Debug = *file.Debug
	}
	if file.MaxUploadBytes != nil {
		cfg.MaxUploadBytes = *file.MaxUploadBytes
	}
	if file.RateLimit != nil {
		cfg.RateLimit = *file.RateLimit
	}
	if file.RateLimitRPM != nil {
		cfg.RateLimitRPM = *file.RateLimitRPM
	}
	if file.UploadRate != nil {
		cfg.UploadRate = *file.UploadRate
	}
	if file.UploadBurst != nil {
		cfg.UploadBurst = *file.UploadBurst
	}
	if file.UploadIPRate != nil {
		cfg.UploadIPRate = *file.UploadIPRate
	}
	if file.UploadIPBurst != nil {
		cfg.UploadIPBurst = *file.UploadIPBurst
	}
	if file.AllowedOrigins != nil {
		cfg.AllowedOrigins = file.AllowedOrigins
	}
	if file.TrustedProxies != nil {
		cfg.TrustedProxies = *file.TrustedProxies
	}
	for _, d := range []struct {
		name string
		src  *string
		dst  *time.Duration
	}{
		{"read_timeout", file.ReadTimeout, &cfg.ReadTimeout},
		{"write_timeout", file.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", file.IdleTimeout, &cfg.IdleTimeout},
		{"shutdown_timeout", file.ShutdownTimeout, &cfg.ShutdownTimeout},
	} {
		if d.src == nil {
			continue
		}
		parsed, err := time.ParseDuration(*d.src)
		if err != nil {
			return fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}
	if file.MaxHeaderBytes != nil {
		cfg.MaxHeaderBytes = *file.MaxHeaderBytes
	}
	if file.OTelEnabled != nil {
		cfg.OTelEnabled = *file.OTelEnabled
	}
	if file.OTelExporter != nil {
		cfg.OTelExporter = *file.OTelExporter
	}
	if file.OTelEndpoint != nil {
		cfg.OTelEndpoint = *file.OTelEndpoint
	}
	if file.OTelSample != nil {
		cfg.OTelSample = *file.OTelSample
	}
	return nil
}

// mergeEnvConfig applies environment overrides (highest priority).
func mergeEnvConfig(cfg *Settings) {
	cfg.Listen = ParseString(EnvListen, cfg.Listen)
	// PORT is only consulted when the canonical listen key is unset anywhere.
	if _, set := os.LookupEnv(EnvListen); !set {
		if port := strings.TrimSpace(os.Getenv(EnvPortAlias)); port != "" {
			cfg.Listen = ":" + port
		}
	}
	cfg.MetricsListen = ParseString(EnvMetricsListen, cfg.MetricsListen)
	cfg.LogLevel = ParseString(EnvLogLevel, cfg.LogLevel)
	cfg.Debug = ParseBool(EnvDebug, cfg.Debug)
	cfg.MaxUploadBytes = ParseInt64(EnvMaxUploadBytes, cfg.MaxUploadBytes)
	cfg.RateLimit = ParseBool(EnvRateLimit, cfg.RateLimit)
	cfg.RateLimitRPM = ParseInt(EnvRateLimitRPM, cfg.RateLimitRPM)
	cfg.UploadRate = ParseFloat(EnvUploadRate, cfg.UploadRate)
	cfg.UploadBurst = ParseInt(EnvUploadBurst, cfg.UploadBurst)
	cfg.UploadIPRate = ParseFloat(EnvUploadIPRate, cfg.UploadIPRate)
	cfg.UploadIPBurst = ParseInt(EnvUploadIPBurst, cfg.UploadIPBurst)
	if origins := ParseString(EnvAllowedOrigins, ""); origins != "" {
		cfg.AllowedOrigins = splitCSV(origins)
	}
	cfg.TrustedProxies = ParseString(EnvTrustedProxies, cfg.TrustedProxies)
	cfg.ReadTimeout = ParseDuration(EnvReadTimeout, cfg.ReadTimeout)
	cfg.WriteTimeout = ParseDuration(EnvWriteTimeout, cfg.WriteTimeout)
	cfg.IdleTimeout = ParseDuration(EnvIdleTimeout, cfg.IdleTimeout)
	cfg.MaxHeaderBytes = ParseInt(EnvMaxHeaderBytes, cfg.MaxHeaderBytes)
	cfg.ShutdownTimeout = ParseDuration(EnvShutdownTimeout, cfg.ShutdownTimeout)
	cfg.OTelEnabled = ParseBool(EnvOTelEnabled, cfg.OTelEnabled)
	cfg.OTelExporter = ParseString(EnvOTelExporter, cfg.OTelExporter)
	cfg.OTelEndpoint = ParseString(EnvOTelEndpoint, cfg.OTelEndpoint)
	cfg.OTelSample = ParseFloat(EnvOTelSample, cfg.OTelSample)
}

func splitCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
