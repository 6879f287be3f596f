// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ManuGH/vidmux/internal/config"
	"github.com/ManuGH/vidmux/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStream(t *testing.T, h *harness, query string) (*bufio.Reader, func()) {
	t.Helper()
	ts := httptest.NewServer(h.srv.Handler())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/download/progress"+query, nil)
	require.NoError(t, err)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	br := bufio.NewReader(resp.Body)
	line, err := br.ReadString('\n')
	require.NoError(t, err)
	require.Equal(t, ": connected\n", line)
	_, err = br.ReadString('\n')
	require.NoError(t, err)

	return br, func() {
		cancel()
		_ = resp.Body.Close()
		ts.Close()
	}
}

// readEvents collects progress data payloads until EOF or n events.
func readEvents(t *testing.T, br *bufio.Reader, n int) []progress.Event {
	t.Helper()
	var events []progress.Event
	for len(events) < n {
		line, err := br.ReadString('\n')
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if payload, ok := strings.CutPrefix(strings.TrimSpace(line), "data: "); ok {
			var ev progress.Event
			require.NoError(t, json.Unmarshal([]byte(payload), &ev))
			events = append(events, ev)
		}
	}
	return events
}

func TestProgressStreamForDownloadEndsOnTerminal(t *testing.T) {
	h := newHarness(t)
	br, done := openStream(t, h, "?id=abc")
	defer done()

	ctx := context.Background()
	h.bcast.Publish(ctx, progress.Percent("other", 10))
	h.bcast.Publish(ctx, progress.Percent("abc", 42.5))
	h.bcast.Publish(ctx, progress.Completed("abc", "abc.mp4"))

	events := readEvents(t, br, 10)
	require.Len(t, events, 2)
	require.NotNil(t, events[0].Percent)
	assert.InDelta(t, 42.5, *events[0].Percent, 0.001)
	require.NotNil(t, events[1].Complete)
	assert.Equal(t, "abc.mp4", events[1].Complete.Filename)

	_, err := br.ReadString('\n')
	assert.ErrorIs(t, err, io.EOF)
}

func TestProgressStreamAllDownloads(t *testing.T) {
	h := newHarness(t)
	br, done := openStream(t, h, "")
	defer done()

	ctx := context.Background()
	h.bcast.Publish(ctx, progress.Percent("one", 5))
	h.bcast.Publish(ctx, progress.Failed("one", "boom"))
	h.bcast.Publish(ctx, progress.Status("two", progress.StatusDownloading))

	events := readEvents(t, br, 3)
	require.Len(t, events, 3)
	assert.Equal(t, "one", events[0].DownloadID)
	assert.Equal(t, "boom", events[1].Error)
	assert.Equal(t, "two", events[2].DownloadID)
}

func TestProgressStreamHeartbeat(t *testing.T) {
	h := newHarness(t, func(cfg *config.AppConfig) {
		cfg.Server.Heartbeat = 20 * time.Millisecond
	})
	br, done := openStream(t, h, "")
	defer done()

	line, err := br.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, ": heartbeat\n", line)
}

func TestProgressStreamClosedOnShutdown(t *testing.T) {
	h := newHarness(t)
	br, done := openStream(t, h, "")
	defer done()

	h.srv.CloseStreams()

	events := readEvents(t, br, 1)
	assert.Empty(t, events)
}
