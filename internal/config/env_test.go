// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		envValue string
		envSet   bool
		want     string
	}{
		{name: "environment variable set", key: "TEST_STRING", envValue: "from-env", envSet: true, want: "from-env"},
		{name: "environment variable not set", key: "TEST_STRING_UNSET", want: "default"},
		{name: "environment variable empty string", key: "TEST_STRING_EMPTY", envValue: "", envSet: true, want: "default"},
		{name: "sensitive variable", key: "TEST_PASSWORD", envValue: "secret123", envSet: true, want: "secret123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envSet {
				t.Setenv(tt.key, tt.envValue)
			}
			assert.Equal(t, tt.want, ParseString(tt.key, "default"))
		})
	}
}

func TestParseIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("TEST_INT", "nope")
	assert.Equal(t, 7, ParseInt("TEST_INT", 7))
	t.Setenv("TEST_INT", "12")
	assert.Equal(t, 12, ParseInt("TEST_INT", 7))
}

func TestParseDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "90s")
	assert.Equal(t, 90*time.Second, ParseDuration("TEST_DUR", time.Second))
	t.Setenv("TEST_DUR", "ninety")
	assert.Equal(t, time.Second, ParseDuration("TEST_DUR", time.Second))
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"yes": true, "1": true, "TRUE": true, "no": false, "0": false} {
		t.Setenv("TEST_BOOL", in)
		assert.Equal(t, want, ParseBool("TEST_BOOL", !want), in)
	}
	t.Setenv("TEST_BOOL", "maybe")
	assert.True(t, ParseBool("TEST_BOOL", true))
}

func TestParseFloat(t *testing.T) {
	t.Setenv("TEST_FLOAT", "0.25")
	assert.Equal(t, 0.25, ParseFloat("TEST_FLOAT", 1))
}
