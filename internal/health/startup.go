// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/ManuGH/vidmux/internal/log"
)

// PerformStartupChecks validates the environment before the server starts:
// the output directory must be writable and both tools must resolve.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := log.WithComponent("startup-check")
	logger.Info().Msg("running pre-flight startup checks")

	if err := os.MkdirAll(cfg.Output.Dir, 0o750); err != nil {
		return fmt.Errorf("output directory check failed: %w", err)
	}
	if err := probeWrite(cfg.Output.Dir); err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", cfg.Output.Dir, err)
	}

	for _, bin := range []string{cfg.Extractor.Bin, cfg.Transcoder.Bin} {
		path, err := exec.LookPath(bin)
		if err != nil {
			return fmt.Errorf("required binary %q not found: %w", bin, err)
		}
		logger.Debug().Str(log.FieldBinary, path).Msg("binary resolved")
	}

	logger.Info().Msg("all startup checks passed")
	return nil
}
