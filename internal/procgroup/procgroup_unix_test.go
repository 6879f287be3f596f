// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

//go:build unix

package procgroup

import (
	"os/exec"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTerminateKillsWholeGroup(t *testing.T) {
	cmd := exec.Command("sh", "-c", "sleep 100 & sleep 100")
	Set(cmd)
	require.NoError(t, cmd.Start())

	pid := cmd.Process.Pid
	pgid, err := syscall.Getpgid(pid)
	require.NoError(t, err)
	require.Equal(t, pid, pgid, "PID should be PGID leader")

	waitCh := make(chan error, 1)
	go func() { waitCh <- cmd.Wait() }()

	start := time.Now()
	err = Terminate(cmd, waitCh, 2*time.Second)
	require.Error(t, err, "signalled process reports a non-nil wait error")
	require.Less(t, time.Since(start), 2*time.Second, "SIGTERM should be enough")
	require.True(t, cmd.ProcessState.Exited() || !cmd.ProcessState.Success())
}

func TestKillNilCommand(t *testing.T) {
	require.NoError(t, Kill(nil, syscall.SIGTERM))
	require.NoError(t, Terminate(&exec.Cmd{}, nil, time.Millisecond))
}

func TestKillExitedProcess(t *testing.T) {
	cmd := exec.Command("true")
	Set(cmd)
	require.NoError(t, cmd.Run())
	require.NoError(t, Kill(cmd, syscall.SIGTERM))
}
