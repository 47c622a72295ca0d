// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ManuGH/wwstay-skill/internal/config"
	"github.com/ManuGH/wwstay-skill/internal/daemon"
	"github.com/ManuGH/wwstay-skill/internal/health"
	wslog "github.com/ManuGH/wwstay-skill/internal/log"
	"github.com/ManuGH/wwstay-skill/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "config":
			os.Exit(runConfigCLI(os.Args[2:]))
		case "healthcheck":
			os.Exit(runHealthcheckCLI(os.Args[2:]))
		}
	}

	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	// Safe defaults until the config is loaded.
	wslog.Configure(wslog.Config{
		Level:   "info",
		Service: "wwstay",
		Version: version.Version,
	})
	logger := wslog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := strings.TrimSpace(*configPath)
	if path == "" {
		path = strings.TrimSpace(config.ParseString("WWSTAY_CONFIG", ""))
	}

	// ENV > file > defaults
	loader := config.NewLoader(path, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", path).
			Msg("failed to load configuration")
	}

	wslog.Configure(wslog.Config{
		Level:   cfg.LogLevel,
		Service: cfg.LogService,
		Version: cfg.Version,
	})
	logger = wslog.WithComponent("daemon")

	source := "env+defaults"
	if path != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", path).
		Msg("loaded configuration")

	if err := health.PerformStartupChecks(ctx, cfg); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "startup.check_failed").
			Msg("startup checks failed, verify the configuration")
	}

	logger.Info().
		Str("event", "startup").
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("build_date", version.Date).
		Str("addr", cfg.Server.ListenAddr).
		Str("endpoint", cfg.Skill.EndpointPath).
		Str("cache_backend", cfg.Cache.Backend).
		Bool("booking_enabled", cfg.Booking.Endpoint != "").
		Msg("starting wwstay skill")

	rt, err := daemon.Build(ctx, cfg, daemon.BuildOptions{Logger: logger})
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "daemon.build_failed").
			Msg("failed to wire the daemon")
	}

	holder := config.NewHolder(cfg, loader, path)
	app := daemon.NewApp(logger, rt.Manager, holder, rt.API)
	if err := app.Run(ctx); err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "manager.failed").
			Msg("daemon app failed")
	}

	logger.Info().Msg("server exiting")
}
