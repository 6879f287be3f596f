// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigHolderReloadNotifiesListeners(t *testing.T) {
	out := t.TempDir()
	path := writeConfig(t, "logLevel: info\noutput:\n  dir: "+out+"\n")
	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewConfigHolder(initial, loader)
	ch := make(chan AppConfig, 1)
	h.RegisterListener(ch)

	require.NoError(t, os.WriteFile(path, []byte("logLevel: warn\noutput:\n  dir: "+out+"\n  retention: 1h\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	assert.Equal(t, "warn", h.Get().LogLevel)
	select {
	case got := <-ch:
		assert.Equal(t, time.Hour, got.Output.Retention)
	default:
		t.Fatal("listener was not notified")
	}
}

func TestConfigHolderKeepsOldConfigOnFailure(t *testing.T) {
	out := t.TempDir()
	path := writeConfig(t, "logLevel: info\noutput:\n  dir: "+out+"\n")
	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)

	h := NewConfigHolder(initial, loader)
	require.NoError(t, os.WriteFile(path, []byte("nonsense: [\n"), 0o600))
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, "info", h.Get().LogLevel)
}

func TestConfigHolderWatcherReloadsOnWrite(t *testing.T) {
	out := t.TempDir()
	path := writeConfig(t, "logLevel: info\noutput:\n  dir: "+out+"\n")
	loader := NewLoader(path, "test")
	initial, err := loader.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewConfigHolder(initial, loader)
	require.NoError(t, h.StartWatcher(ctx))

	require.NoError(t, os.WriteFile(path, []byte("logLevel: error\noutput:\n  dir: "+out+"\n"), 0o600))
	require.Eventually(t, func() bool {
		return h.Get().LogLevel == "error"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStartWatcherWithoutFileIsNoop(t *testing.T) {
	h := NewConfigHolder(Defaults(), NewLoader("", ""))
	require.NoError(t, h.StartWatcher(context.Background()))
}
