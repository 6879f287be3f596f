// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{Enabled: false, ExporterType: "grpc"})
	require.NoError(t, err)
	assert.Nil(t, provider.tp)
	require.NoError(t, provider.Shutdown(context.Background()))

	_, span := otel.Tracer("test").Start(context.Background(), "noop-check")
	assert.False(t, span.IsRecording())
	span.End()
}

func TestNewProvider_InvalidExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Enabled: true, ExporterType: "zipkin"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported exporter type")
}

func TestNewProvider_HTTPExporter(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{
		Enabled:      true,
		ServiceName:  "vidmux-test",
		ExporterType: "http",
		Endpoint:     "127.0.0.1:4318",
		SamplingRate: 0.5,
	})
	require.NoError(t, err)
	require.NotNil(t, p.tp)
	_ = p.Shutdown(context.Background())
}

func TestRecordErrorMarksSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	_, span := tp.Tracer("t").Start(context.Background(), "attempt")
	span.SetAttributes(DownloadAttributes("abc", 2, "bestvideo+bestaudio/best")...)
	RecordError(span, errors.New("boom"), "timeout")
	RecordError(span, nil, "ignored")
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	attrs := map[string]string{}
	for _, kv := range ended[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "abc", attrs[DownloadIDKey])
	assert.Equal(t, "2", attrs[DownloadAttemptKey])
	assert.Equal(t, "timeout", attrs[ErrorTypeKey])
}
