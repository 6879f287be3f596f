// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package formats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{125, "2:05"},
		{3599, "59:59"},
		{3723, "1:02:03"},
		{-4, "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}

func TestFormatViews(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 views"},
		{500, "500 views"},
		{1000, "1K views"},
		{1234, "1.2K views"},
		{1500000, "1.5M views"},
		{2000000, "2M views"},
		{3100000000, "3.1B views"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatViews(tt.in))
	}
}
