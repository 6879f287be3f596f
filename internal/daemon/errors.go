// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

// Wiring errors. Build never produces them; they guard hand-assembled
// managers and apps.
var (
	ErrMissingLogger     = errors.New("daemon: logger is required")
	ErrMissingAPIHandler = errors.New("daemon: API handler is required")
	ErrMissingManager    = errors.New("daemon: app needs a manager")

	// ErrManagerNotStarted is returned by Shutdown before Start was called.
	ErrManagerNotStarted = errors.New("daemon: manager not started")
)
