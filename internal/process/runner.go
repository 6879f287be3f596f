// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package process supervises external tool invocations. A run yields a
// finite stream of output lines and exactly one exit status.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"time"

	xglog "github.com/ManuGH/vidmux/internal/log"
	"github.com/ManuGH/vidmux/internal/metrics"
	"github.com/ManuGH/vidmux/internal/procgroup"
	"github.com/rs/zerolog"
)

const (
	defaultRingSize = 256
	defaultGrace    = 2 * time.Second
	maxLineBytes    = 1 << 20
)

// Stream names the pipe a line was read from.
type Stream string

const (
	Stdout Stream = "stdout"
	Stderr Stream = "stderr"
)

// Line is one line of tool output.
type Line struct {
	Stream Stream
	Text   string
}

// Spec describes a single invocation.
type Spec struct {
	Tool    string // label for logs and metrics, e.g. "extractor"
	Bin     string
	Args    []string
	Dir     string
	Timeout time.Duration // 0 disables the wall-clock limit

	// Stdout, when set, receives raw stdout instead of line scanning.
	Stdout io.Writer
}

// ExitStatus is the terminal result of a run.
type ExitStatus struct {
	Code     int
	TimedOut bool
	Canceled bool
	Duration time.Duration
	Err      error
}

// OK reports a clean zero exit.
func (s ExitStatus) OK() bool { return s.Err == nil }

// Runner starts external tools.
type Runner struct {
	Grace    time.Duration
	RingSize int
	Logger   zerolog.Logger
}

// NewRunner creates a Runner with the package defaults.
func NewRunner() *Runner {
	return &Runner{
		Grace:    defaultGrace,
		RingSize: defaultRingSize,
		Logger:   xglog.WithComponent("process"),
	}
}

// Handle is a running invocation.
type Handle struct {
	spec  Spec
	cmd   *exec.Cmd
	lines chan Line
	ring  *LineRing
	done  chan struct{}
	exit  ExitStatus
	once  sync.Once
}

// Start launches spec in its own process group. The run is killed when ctx
// is cancelled or spec.Timeout elapses.
func (r *Runner) Start(ctx context.Context, spec Spec) (*Handle, error) {
	if spec.Tool == "" {
		spec.Tool = spec.Bin
	}
	cmd := exec.Command(spec.Bin, spec.Args...) // #nosec G204 -- binary and args come from operator config and validated input
	cmd.Dir = spec.Dir
	procgroup.Set(cmd)

	var stdout io.ReadCloser
	var err error
	if spec.Stdout != nil {
		cmd.Stdout = spec.Stdout
	} else {
		stdout, err = cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("%w: pipe stdout: %v", ErrSpawn, err)
		}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: pipe stderr: %v", ErrSpawn, err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		metrics.IncProcExit(spec.Tool, -1)
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, spec.Bin, err)
	}

	ringSize := r.RingSize
	if ringSize <= 0 {
		ringSize = defaultRingSize
	}
	h := &Handle{
		spec:  spec,
		cmd:   cmd,
		lines: make(chan Line, 64),
		ring:  NewLineRing(ringSize),
		done:  make(chan struct{}),
	}

	logger := xglog.WithContext(ctx, r.Logger).With().
		Str("tool", spec.Tool).
		Int(xglog.FieldPID, cmd.Process.Pid).
		Logger()
	logger.Debug().Str(xglog.FieldEvent, "process.start").Str(xglog.FieldBinary, spec.Bin).Strs("args", spec.Args).Msg("process started")

	var pumps sync.WaitGroup
	if stdout != nil {
		pumps.Add(1)
		go h.pump(&pumps, stdout, Stdout)
	}
	pumps.Add(1)
	go h.pump(&pumps, stderr, Stderr)

	waitCh := make(chan error, 1)
	go func() {
		// Pipes must be fully read before Wait.
		pumps.Wait()
		close(h.lines)
		waitCh <- cmd.Wait()
	}()

	grace := r.Grace
	if grace <= 0 {
		grace = defaultGrace
	}
	go h.supervise(ctx, waitCh, grace, start, logger)

	return h, nil
}

func (h *Handle) pump(wg *sync.WaitGroup, rd io.Reader, stream Stream) {
	defer wg.Done()
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	sc.Split(scanLinesOrCR)
	for sc.Scan() {
		text := sc.Text()
		if text == "" {
			continue
		}
		h.ring.Add(text)
		h.lines <- Line{Stream: stream, Text: text}
	}
	// Keep draining so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, rd)
}

func (h *Handle) supervise(ctx context.Context, waitCh chan error, grace time.Duration, start time.Time, logger zerolog.Logger) {
	var timeout <-chan time.Time
	if h.spec.Timeout > 0 {
		t := time.NewTimer(h.spec.Timeout)
		defer t.Stop()
		timeout = t.C
	}

	var st ExitStatus
	select {
	case err := <-waitCh:
		st.Err = err
	case <-timeout:
		st.TimedOut = true
		_ = procgroup.Terminate(h.cmd, waitCh, grace)
	case <-ctx.Done():
		st.Canceled = true
		_ = procgroup.Terminate(h.cmd, waitCh, grace)
	}
	st.Duration = time.Since(start)
	if h.cmd.ProcessState != nil {
		st.Code = h.cmd.ProcessState.ExitCode()
	}

	switch {
	case st.TimedOut:
		st.Err = fmt.Errorf("%s: %w after %s", h.spec.Tool, ErrTimeout, h.spec.Timeout)
	case st.Canceled:
		st.Err = fmt.Errorf("%s: %w", h.spec.Tool, ctx.Err())
	case st.Err != nil:
		var exitErr *exec.ExitError
		if errors.As(st.Err, &exitErr) {
			st.Code = exitErr.ExitCode()
			st.Err = &ExitError{Tool: h.spec.Tool, Code: st.Code, Diagnostics: h.ring.Lines()}
		} else {
			st.Err = fmt.Errorf("%s: wait: %w", h.spec.Tool, st.Err)
		}
	}

	metrics.IncProcExit(h.spec.Tool, st.Code)
	ev := logger.Debug()
	if st.Err != nil {
		ev = logger.Warn().Err(st.Err)
	}
	ev.Str(xglog.FieldEvent, "process.exit").
		Int(xglog.FieldExitCode, st.Code).
		Bool("timed_out", st.TimedOut).
		Dur("duration", st.Duration).
		Msg("process exited")

	h.exit = st
	close(h.done)
}

// Lines streams output until both pipes close. It must be drained, or Wait
// called, for the run to finish.
func (h *Handle) Lines() <-chan Line {
	return h.lines
}

// Wait blocks until the process has exited and returns its status. Lines
// not yet consumed are discarded.
func (h *Handle) Wait() ExitStatus {
	h.once.Do(func() {
		go func() {
			for range h.lines {
			}
		}()
	})
	<-h.done
	return h.exit
}

// Diagnostics returns the most recent output lines.
func (h *Handle) Diagnostics() []string {
	return h.ring.Lines()
}

// PID of the group leader.
func (h *Handle) PID() int {
	return h.cmd.Process.Pid
}

// Run starts spec and waits for it, discarding line output.
func (r *Runner) Run(ctx context.Context, spec Spec) (ExitStatus, []string, error) {
	h, err := r.Start(ctx, spec)
	if err != nil {
		return ExitStatus{Code: -1, Err: err}, nil, err
	}
	st := h.Wait()
	return st, h.Diagnostics(), st.Err
}

// scanLinesOrCR splits on \n or \r so carriage-return progress redraws
// surface as separate lines.
func scanLinesOrCR(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	for i, b := range data {
		if b == '\n' || b == '\r' {
			return i + 1, data[:i], nil
		}
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
