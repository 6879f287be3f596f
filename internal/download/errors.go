// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package download

import (
	"context"
	"errors"

	"github.com/ManuGH/vidmux/internal/process"
)

var (
	// ErrOutputMissing means the extractor exited cleanly but the expected
	// output file does not exist.
	ErrOutputMissing = errors.New("output file missing after download")
	// ErrRetriesExhausted wraps the last attempt error once no attempts remain.
	ErrRetriesExhausted = errors.New("download failed after all attempts")
	// ErrBusy is returned when the concurrency limit is reached.
	ErrBusy = errors.New("too many downloads in progress")
)

// outcome classifies an attempt error for metrics and spans.
func outcome(err error) string {
	var exitErr *process.ExitError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, process.ErrTimeout):
		return "timeout"
	case errors.Is(err, process.ErrSpawn):
		return "spawn_error"
	case errors.Is(err, ErrOutputMissing):
		return "output_missing"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &exitErr):
		return "exit_nonzero"
	default:
		return "error"
	}
}

// Details returns the diagnostic text carried by err, if any.
func Details(err error) string {
	var exitErr *process.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Details()
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
