// SPDX-License-Identifier: MIT

package daemon

import (
	"net/http"

	"github.com/rs/zerolog"
)

// Deps contains dependencies required by the daemon Manager.
type Deps struct {
	Logger zerolog.Logger

	// APIHandler serves every route, metrics and health included.
	APIHandler http.Handler

	// OnShutdown callbacks run when the listener starts shutting down.
	// Handlers that never finish on their own, like progress streams, use
	// them to return so Shutdown does not wait out its timeout.
	OnShutdown []func()
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate() error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}
