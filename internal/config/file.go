// SPDX-License-Identifier: MIT

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors Settings with pointer fields so that absent keys are
// distinguishable from zero values when merging.
type FileConfig struct {
	Listen        *string `yaml:"listen"`
	MetricsListen *string `yaml:"metrics_listen"`

	LogLevel *string `yaml:"log_level"`
	Debug    *bool   `yaml:"debug"`

	MaxUploadBytes *int64 `yaml:"max_upload_bytes"`

	RateLimit    *bool `yaml:"rate_limit"`
	RateLimitRPM *int  `yaml:"rate_limit_rpm"`

	UploadRate    *float64 `yaml:"upload_rate"`
	UploadBurst   *int     `yaml:"upload_burst"`
	UploadIPRate  *float64 `yaml:"upload_ip_rate"`
	UploadIPBurst *int     `yaml:"upload_ip_burst"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	TrustedProxies *string  `yaml:"trusted_proxies"`

	ReadTimeout     *string `yaml:"read_timeout"`
	WriteTimeout    *string `yaml:"write_timeout"`
	IdleTimeout     *string `yaml:"idle_timeout"`
	MaxHeaderBytes  *int    `yaml:"max_header_bytes"`
	ShutdownTimeout *string `yaml:"shutdown_timeout"`

	OTelEnabled  *bool    `yaml:"otel_enabled"`
	OTelExporter *string  `yaml:"otel_exporter"`
	OTelEndpoint *string  `yaml:"otel_endpoint"`
	OTelSample   *float64 `yaml:"otel_sample"`
}

// LoadFileConfig parses path as strict YAML: unknown keys are an error, so a
// typo in a config file fails loudly instead of silently using a default.
func LoadFileConfig(path string) (*FileConfig, error) {
	// #nosec G304 -- path comes from the operator's own flag/env
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file is a valid "all defaults" config.
			return &FileConfig{}, nil
		}
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cfg, nil
}
