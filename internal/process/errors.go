// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package process

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTimeout reports that a run exceeded its wall-clock budget and was killed.
	ErrTimeout = errors.New("process timed out")
	// ErrSpawn wraps failures to start the binary at all.
	ErrSpawn = errors.New("process spawn failed")
)

// ExitError is a completed run with a non-zero exit code.
type ExitError struct {
	Tool        string
	Code        int
	Diagnostics []string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.Code)
	if tail := lastNonEmpty(e.Diagnostics); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// Details returns the retained diagnostics joined by newlines.
func (e *ExitError) Details() string {
	return strings.Join(e.Diagnostics, "\n")
}

func lastNonEmpty(lines []string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return ""
}
