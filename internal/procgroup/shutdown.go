// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package procgroup

import (
	"os/exec"
	"syscall"
	"time"

	"github.com/ManuGH/vidmux/internal/metrics"
)

// Terminate stops a process group: SIGTERM, wait up to grace, then SIGKILL.
// It consumes and returns the result from waitCh, which must deliver the
// cmd.Wait error exactly once. Safe to call on nil commands.
func Terminate(cmd *exec.Cmd, waitCh <-chan error, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	signal(cmd, syscall.SIGTERM, "SIGTERM")

	select {
	case err := <-waitCh:
		if err == nil {
			metrics.IncProcWait("exit0")
		} else {
			metrics.IncProcWait("exit_nonzero")
		}
		return err
	case <-time.After(grace):
		signal(cmd, syscall.SIGKILL, "SIGKILL")

		// SIGKILL cannot be ignored; drain the wait result.
		err := <-waitCh
		if err == nil {
			metrics.IncProcWait("forced_exit0")
		} else {
			metrics.IncProcWait("forced_error")
		}
		return err
	}
}

func signal(cmd *exec.Cmd, sig syscall.Signal, name string) {
	if err := Kill(cmd, sig); err != nil {
		metrics.IncProcTerminate(name, "error")
		return
	}
	metrics.IncProcTerminate(name, "sent")
}
