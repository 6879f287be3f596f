// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for consistent tracing across the application.
const (
	DownloadIDKey      = "download.id"
	DownloadAttemptKey = "download.attempt"
	DownloadFormatKey  = "download.format"
	DownloadOutcomeKey = "download.outcome"

	ToolKey         = "process.tool"
	ToolExitCodeKey = "process.exit_code"

	EmbedCoverKey = "embed.cover_art"

	ErrorTypeKey = "error.type"
)

// DownloadAttributes creates common attributes for a download attempt span.
func DownloadAttributes(id string, attempt int, selector string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(DownloadIDKey, id),
		attribute.Int(DownloadAttemptKey, attempt),
		attribute.String(DownloadFormatKey, selector),
	}
}

// RecordError marks the span failed with a classified error type.
func RecordError(span trace.Span, err error, errType string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if errType != "" {
		span.SetAttributes(attribute.String(ErrorTypeKey, errType))
	}
}
