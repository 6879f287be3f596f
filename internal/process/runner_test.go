// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package process

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func shSpec(script string) Spec {
	return Spec{Tool: "test", Bin: "sh", Args: []string{"-c", script}}
}

func collect(h *Handle) []Line {
	var out []Line
	for l := range h.Lines() {
		out = append(out, l)
	}
	return out
}

func TestStartStreamsBothPipes(t *testing.T) {
	h, err := NewRunner().Start(context.Background(), shSpec("echo out1; echo err1 >&2; printf 'a\\rb\\n'"))
	require.NoError(t, err)

	lines := collect(h)
	st := h.Wait()
	require.True(t, st.OK())
	assert.Equal(t, 0, st.Code)

	var texts []string
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	assert.ElementsMatch(t, []string{"out1", "err1", "a", "b"}, texts)
}

func TestNonZeroExitCarriesDiagnostics(t *testing.T) {
	h, err := NewRunner().Start(context.Background(), shSpec("echo 'ERROR: unsupported url' >&2; exit 3"))
	require.NoError(t, err)

	st := h.Wait()
	require.Error(t, st.Err)
	assert.Equal(t, 3, st.Code)

	var exitErr *ExitError
	require.True(t, errors.As(st.Err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Contains(t, exitErr.Error(), "unsupported url")
	assert.Contains(t, exitErr.Details(), "ERROR: unsupported url")
}

func TestTimeoutKillsProcess(t *testing.T) {
	spec := shSpec("sleep 30")
	spec.Timeout = 100 * time.Millisecond

	r := NewRunner()
	r.Grace = 200 * time.Millisecond
	h, err := r.Start(context.Background(), spec)
	require.NoError(t, err)

	st := h.Wait()
	assert.True(t, st.TimedOut)
	assert.ErrorIs(t, st.Err, ErrTimeout)
	assert.Less(t, st.Duration, 5*time.Second)
}

func TestContextCancelStopsProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h, err := NewRunner().Start(ctx, shSpec("sleep 30"))
	require.NoError(t, err)

	cancel()
	st := h.Wait()
	assert.True(t, st.Canceled)
	assert.ErrorIs(t, st.Err, context.Canceled)
}

func TestSpawnFailure(t *testing.T) {
	_, err := NewRunner().Start(context.Background(), Spec{Tool: "missing", Bin: "/nonexistent/tool"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSpawn)
}

func TestRunWithStdoutWriter(t *testing.T) {
	var buf bytes.Buffer
	spec := shSpec(`printf '{"title":"x"}'`)
	spec.Stdout = &buf

	st, _, err := NewRunner().Run(context.Background(), spec)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Code)
	assert.Equal(t, `{"title":"x"}`, buf.String())
}

func TestLineRingKeepsNewest(t *testing.T) {
	r := NewLineRing(3)
	for _, s := range []string{"1", "2", "3", "4", "5"} {
		r.Add(s)
	}
	assert.Equal(t, []string{"3", "4", "5"}, r.Lines())

	r2 := NewLineRing(3)
	r2.Add("only")
	assert.Equal(t, []string{"only"}, r2.Lines())
}
