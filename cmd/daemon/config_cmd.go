// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"

	"github.com/sparkledex/sparkledex/internal/config"
)

func runConfigCLI(args []string) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printConfigUsage()
		return 0
	}

	switch args[0] {
	case "init":
		return runConfigInit(args[1:])
	case "validate":
		return runConfigValidate(args[1:])
	case "dump":
		return runConfigDump(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n\n", args[0])
		printConfigUsage()
		return 2
	}
}

func printConfigUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  sparkledex config init [--file|-f config.yaml] [--force]")
	fmt.Fprintln(os.Stderr, "  sparkledex config validate [--file|-f config.yaml]")
	fmt.Fprintln(os.Stderr, "  sparkledex config dump --effective [--file|-f config.yaml] [--format=yaml|json]")
}

func resolveDefaultConfigPath() string {
	return strings.TrimSpace(os.Getenv(config.EnvConfigPath))
}

// runConfigInit writes a starter config file with the default settings
// spelled out, so operators can edit instead of guessing key names.
func runConfigInit(args []string) int {
	fs := flag.NewFlagSet("sparkledex config init", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	var force bool
	fs.StringVar(&file, "file", "config.yaml", "path for the new configuration file")
	fs.StringVar(&file, "f", "config.yaml", "path for the new configuration file (shorthand)")
	fs.BoolVar(&force, "force", false, "overwrite an existing file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	path := strings.TrimSpace(file)
	if path == "" {
		fmt.Fprintln(os.Stderr, "Error: --file must not be empty")
		return 2
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists (use --force to overwrite)\n", path)
			return 1
		}
	}

	fileCfg := fileConfigFromSettings(config.Defaults())
	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fileCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode YAML: %v\n", err)
		return 1
	}
	_ = enc.Close()

	// Atomic write so a crash never leaves a half-written config behind.
	if err := renameio.WriteFile(path, []byte(buf.String()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", path, err)
		return 1
	}

	fmt.Printf("wrote %s\n", path)
	return 0
}

func runConfigValidate(args []string) int {
	fs := flag.NewFlagSet("sparkledex config validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}
	if configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: --file is required (SPARKLEDEX_CONFIG is not set)")
		return 2
	}

	loader := config.NewLoader(configPath)
	if _, err := loader.Load(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fmt.Printf("✓ %s is valid\n", configPath)
	return 0
}

func runConfigDump(args []string) int {
	fs := flag.NewFlagSet("sparkledex config dump", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var file string
	var format string
	var effective bool

	fs.StringVar(&file, "file", "", "path to YAML configuration file")
	fs.StringVar(&file, "f", "", "path to YAML configuration file (shorthand)")
	fs.StringVar(&format, "format", "yaml", "output format: yaml or json")
	fs.BoolVar(&effective, "effective", false, "dump effective configuration (defaults + file + env)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if !effective {
		fmt.Fprintln(os.Stderr, "Error: --effective is required")
		return 2
	}

	configPath := strings.TrimSpace(file)
	if configPath == "" {
		configPath = resolveDefaultConfigPath()
	}

	loader := config.NewLoader(configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error in %s:\n  %v\n", configPath, err)
		return 1
	}

	fileCfg := fileConfigFromSettings(cfg)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode YAML: %v\n", err)
			return 1
		}
		_ = enc.Close()
		return 0
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(fileCfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON: %v\n", err)
			return 1
		}
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unsupported format: %s (use yaml or json)\n", format)
		return 2
	}
}

// fileConfigFromSettings renders resolved settings back into the file schema
// so init and dump emit exactly the keys the loader accepts.
func fileConfigFromSettings(cfg config.Settings) config.FileConfig {
	listen := cfg.Listen
	metricsListen := cfg.MetricsListen
	logLevel := cfg.LogLevel
	debug := cfg.Debug
	maxUploadBytes := cfg.MaxUploadBytes
	rateLimit := cfg.RateLimit
	rateLimitRPM := cfg.RateLimitRPM
	uploadRate := cfg.UploadRate
	uploadBurst := cfg.UploadBurst
	uploadIPRate := cfg.UploadIPRate
	uploadIPBurst := cfg.UploadIPBurst
	trustedProxies := cfg.TrustedProxies
	readTimeout := cfg.ReadTimeout.String()
	writeTimeout := cfg.WriteTimeout.String()
	idleTimeout := cfg.IdleTimeout.String()
	maxHeaderBytes := cfg.MaxHeaderBytes
	shutdownTimeout := cfg.ShutdownTimeout.String()
	otelEnabled := cfg.OTelEnabled
	otelExporter := cfg.OTelExporter
	otelEndpoint := cfg.OTelEndpoint
	otelSample := cfg.OTelSample

	return config.FileConfig{
		Listen:          &listen,
		MetricsListen:   &metricsListen,
		LogLevel:        &logLevel,
		Debug:           &debug,
		MaxUploadBytes:  &maxUploadBytes,
		RateLimit:       &rateLimit,
		RateLimitRPM:    &rateLimitRPM,
		UploadRate:      &uploadRate,
		UploadBurst:     &uploadBurst,
		UploadIPRate:    &uploadIPRate,
		UploadIPBurst:   &uploadIPBurst,
		AllowedOrigins:  cfg.AllowedOrigins,
		TrustedProxies:  &trustedProxies,
		ReadTimeout:     &readTimeout,
		WriteTimeout:    &writeTimeout,
		IdleTimeout:     &idleTimeout,
		MaxHeaderBytes:  &maxHeaderBytes,
		ShutdownTimeout: &shutdownTimeout,
		OTelEnabled:     &otelEnabled,
		OTelExporter:    &otelExporter,
		OTelEndpoint:    &otelEndpoint,
		OTelSample:      &otelSample,
	}
}
