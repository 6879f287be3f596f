// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID  = "request_id"
	FieldDownloadID = "download_id"

	FieldEvent     = "event"
	FieldComponent = "component"

	// Subprocess fields
	FieldBinary   = "binary"
	FieldPID      = "pid"
	FieldExitCode = "exit_code"
	FieldAttempt  = "attempt"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	FieldPath     = "path"
	FieldURL      = "url"
	FieldFormatID = "format_id"
)
