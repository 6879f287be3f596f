// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package download

import "fmt"

// Phase is a position in the retry state machine.
type Phase int

const (
	PhaseAttempting Phase = iota
	PhaseRetrying
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseAttempting:
		return "attempting"
	case PhaseRetrying:
		return "retrying"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// machine drives Attempting -> Succeeded | Retrying -> Attempting | Failed.
type machine struct {
	phase   Phase
	attempt int // 1-based number of the current attempt
	max     int
}

func newMachine(maxAttempts int) *machine {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &machine{phase: PhaseAttempting, attempt: 1, max: maxAttempts}
}

// finish records the outcome of the current attempt. A non-retryable
// failure goes straight to Failed.
func (m *machine) finish(err error, retryable bool) Phase {
	if m.phase != PhaseAttempting {
		panic("download: finish outside an attempt")
	}
	switch {
	case err == nil:
		m.phase = PhaseSucceeded
	case !retryable || m.attempt >= m.max:
		m.phase = PhaseFailed
	default:
		m.phase = PhaseRetrying
	}
	return m.phase
}

// retry starts the next attempt and returns its retry number (1-based).
func (m *machine) retry() int {
	if m.phase != PhaseRetrying {
		panic("download: retry outside the retrying phase")
	}
	m.phase = PhaseAttempting
	m.attempt++
	return m.attempt - 1
}

// retries is the number of retries allowed after the first attempt.
func (m *machine) retries() int {
	return m.max - 1
}
