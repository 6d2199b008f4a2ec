// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sparkledex/sparkledex/internal/api"
	"github.com/sparkledex/sparkledex/internal/config"
	"github.com/sparkledex/sparkledex/internal/daemon"
	"github.com/sparkledex/sparkledex/internal/health"
	"github.com/sparkledex/sparkledex/internal/log"
	"github.com/sparkledex/sparkledex/internal/telemetry"
	"github.com/sparkledex/sparkledex/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) > 1 && os.Args[1] == "config" {
		return runConfigCLI(os.Args[2:])
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return 0
	}

	// Safe defaults until the real configuration is loaded.
	log.Configure(log.Config{
		Level:   "info",
		Service: "sparkledex",
		Version: version.Version,
	})
	logger := log.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Config path precedence: --config flag > SPARKLEDEX_CONFIG env.
	effectiveConfigPath := strings.TrimSpace(*configPath)
	if effectiveConfigPath == "" {
		effectiveConfigPath = strings.TrimSpace(config.ParseString(config.EnvConfigPath, ""))
	}

	loader := config.NewLoader(effectiveConfigPath)
	cfg, err := loader.Load()
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "config.load_failed").
			Str("config_path", effectiveConfigPath).
			Msg("failed to load configuration")
		return 1
	}

	// Re-configure logging with the loaded level.
	if err := log.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level, keeping info")
	}

	if effectiveConfigPath != "" {
		logger.Info().
			Str(log.FieldEvent, "config.loaded").
			Str("source", "file").
			Str("path", effectiveConfigPath).
			Msg("loaded configuration from file")
	} else {
		logger.Info().
			Str(log.FieldEvent, "config.loaded").
			Str("source", "env+defaults").
			Msg("loaded configuration from environment and defaults")
	}

	logger.Info().
		Str(log.FieldEvent, "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str(log.FieldListenAddr, cfg.Listen).
		Msg("starting sparkledex")

	logger.Info().Msgf("→ Max upload: %d bytes", cfg.MaxUploadBytes)
	if cfg.RateLimit {
		logger.Info().Msgf("→ Rate limit: %d req/min per IP, %.0f/s global", cfg.RateLimitRPM, cfg.UploadRate)
	} else {
		logger.Warn().Msg("→ Rate limit: disabled")
	}
	if cfg.MetricsListen != "" {
		logger.Info().Msgf("→ Metrics: %s", cfg.MetricsListen)
	}

	// Tracing is opt-in; a disabled provider is a no-op.
	tp, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:        cfg.OTelEnabled,
		ServiceName:    "sparkledex",
		ServiceVersion: version.Version,
		Environment:    config.ParseString("SPARKLEDEX_ENV", "production"),
		ExporterType:   cfg.OTelExporter,
		Endpoint:       cfg.OTelEndpoint,
		SamplingRate:   cfg.OTelSample,
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "telemetry.init_failed").
			Msg("failed to initialise tracing")
		return 1
	}

	// Hot reload support: watch the config file and honour SIGHUP.
	cfgHolder := config.NewHolder(cfg, loader, effectiveConfigPath)

	healthMgr := health.NewManager(version.Version)
	apiServer := api.New(cfgHolder, healthMgr)

	deps := daemon.Deps{
		Logger:         logger,
		Settings:       cfg,
		APIHandler:     apiServer.Handler(),
		MetricsHandler: promhttp.Handler(),
		OnReady: func() {
			healthMgr.SetReady(true)
			logger.Info().Str(log.FieldEvent, "daemon.ready").Msg("daemon ready")
		},
		OnStopping: func() {
			healthMgr.SetReady(false)
		},
	}

	mgr, err := daemon.NewManager(deps)
	if err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "manager.creation.failed").
			Msg("failed to create daemon manager")
		return 1
	}
	mgr.RegisterShutdownHook("telemetry", tp.Shutdown)

	app := daemon.NewApp(logger, mgr, cfgHolder, apiServer)
	if err := app.Run(ctx); err != nil {
		logger.Error().
			Err(err).
			Str(log.FieldEvent, "daemon.failed").
			Msg("daemon exited with error")
		return 1
	}

	logger.Info().Msg("server exiting")
	return 0
}
