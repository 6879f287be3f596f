// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package progress

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ManuGH/vidmux/internal/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, sub bus.Subscriber) Event {
	t.Helper()
	select {
	case m := <-sub.C():
		var ev Event
		require.NoError(t, json.Unmarshal(m, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event")
		return Event{}
	}
}

func TestBroadcasterPerDownloadTopics(t *testing.T) {
	b := bus.NewMemoryBus()
	defer b.Close()
	bc := NewBroadcaster(b, 100*time.Millisecond)
	ctx := context.Background()

	all, err := bc.Subscribe(ctx, "")
	require.NoError(t, err)
	one, err := bc.Subscribe(ctx, "a")
	require.NoError(t, err)

	bc.Publish(ctx, Percent("b", 10))
	bc.Publish(ctx, Percent("a", 42.5))

	first := recv(t, all)
	assert.Equal(t, "b", first.DownloadID)
	second := recv(t, all)
	assert.Equal(t, "a", second.DownloadID)

	got := recv(t, one)
	assert.Equal(t, "a", got.DownloadID)
	require.NotNil(t, got.Percent)
	assert.Equal(t, 42.5, *got.Percent)

	select {
	case <-one.C():
		t.Fatal("download b leaked onto download a's topic")
	default:
	}
}

func TestEventEncoding(t *testing.T) {
	raw, err := json.Marshal(Finalizing("x"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"downloadId":"x","percent":100,"status":"Finalizing…"}`, string(raw))

	raw, err = json.Marshal(Percent("x", 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"downloadId":"x","percent":0}`, string(raw))

	raw, err = json.Marshal(Completed("x", "x.mp4"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"downloadId":"x","complete":{"filename":"x.mp4"}}`, string(raw))
}

func TestTerminal(t *testing.T) {
	assert.True(t, Failed("x", "boom").Terminal())
	assert.True(t, Completed("x", "f").Terminal())
	assert.False(t, Status("x", StatusDownloading).Terminal())
}

func TestPublishSurvivesCanceledContext(t *testing.T) {
	b := bus.NewMemoryBus()
	defer b.Close()
	bc := NewBroadcaster(b, 100*time.Millisecond)

	sub, err := bc.Subscribe(context.Background(), "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bc.Publish(ctx, Failed("z", "client went away"))
	assert.Equal(t, "client went away", recv(t, sub).Error)
}

func TestRecorderDrain(t *testing.T) {
	r := NewRecorder(4)
	r.Publish(context.Background(), Status("a", "s1"))
	r.Publish(context.Background(), Status("a", "s2"))
	evs := r.Drain()
	require.Len(t, evs, 2)
	assert.Equal(t, "s2", evs[1].Status)
	assert.Empty(t, r.Drain())
}
