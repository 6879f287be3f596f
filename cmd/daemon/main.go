// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/ManuGH/vidmux/internal/daemon"
	xglog "github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/version"
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
		fmt.Printf("%s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		os.Exit(0)
	}

	xglog.Configure(xglog.Config{
		Level:   "info",
		Service: "vidmux",
		Version: version.Version,
	})
	logger := xglog.WithComponent("daemon")

	ctx, stop := daemon.WaitForShutdown()
	defer stop()

	path := strings.TrimSpace(*configPath)
	loader := config.NewLoader(path, version.Version)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().
			Err(err).
			Str("event", "config.load_failed").
			Str("config_path", path).
			Msg("failed to load configuration")
	}
	if err := xglog.SetLevel(cfg.LogLevel); err != nil {
		logger.Warn().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level, keeping info")
	}

	source := "env+defaults"
	if path != "" {
		source = "file"
	}
	logger.Info().
		Str("event", "config.loaded").
		Str("source", source).
		Str("path", path).
		Str("version", version.Version).
		Msg("loaded configuration")

	holder := config.NewConfigHolder(cfg, loader)
	app, err := daemon.Build(ctx, holder)
	if err != nil {
		logger.Fatal().Err(err).Str("event", "startup.failed").Msg("failed to start")
	}

	if err := app.Run(ctx); err != nil {
		logger.Error().Err(err).Str("event", "daemon.exit").Msg("daemon stopped with error")
		stop()
		os.Exit(1)
	}
	logger.Info().Str("event", "daemon.exit").Msg("daemon stopped")
}
