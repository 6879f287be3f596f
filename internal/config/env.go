// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/vidmux/internal/log"
	"github.com/rs/zerolog"
)

func envLogger() zerolog.Logger {
	return log.WithComponent("config")
}

func logDefault(logger zerolog.Logger, key string, empty bool) {
	msg := "using default value"
	if empty {
		msg = "using default value (environment variable is empty)"
	}
	logger.Debug().Str("key", key).Str("source", "default").Msg(msg)
}

// ParseString reads a string from environment variable or returns default value.
// It logs the source (environment or default) for observability.
func ParseString(key, defaultValue string) string {
	logger := envLogger()
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		logDefault(logger, key, exists)
		return defaultValue
	}
	lowerKey := strings.ToLower(key)
	if strings.Contains(lowerKey, "password") || strings.Contains(lowerKey, "token") {
		logger.Debug().Str("key", key).Str("source", "environment").Bool("sensitive", true).Msg("using environment variable")
	} else {
		logger.Debug().Str("key", key).Str("value", value).Str("source", "environment").Msg("using environment variable")
	}
	return value
}

// ParseInt reads an integer from environment variable or returns default value.
// It validates the input and falls back to default on parse errors.
func ParseInt(key string, defaultValue int) int {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok)
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Int("default", defaultValue).
			Msg("invalid integer in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Int("value", i).Str("source", "environment").Msg("using environment variable")
	return i
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok)
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Float64("default", defaultValue).
			Msg("invalid float in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Float64("value", f).Str("source", "environment").Msg("using environment variable")
	return f
}

// ParseDuration reads a duration from environment variable in Go duration format (e.g. "5s").
// It falls back to default on parse errors or empty variables and logs the choice.
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok)
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		logger.Warn().Str("key", key).Str("value", v).Dur("default", defaultValue).
			Msg("invalid duration in environment variable, using default")
		return defaultValue
	}
	logger.Debug().Str("key", key).Dur("value", d).Str("source", "environment").Msg("using environment variable")
	return d
}

// ParseBool reads a boolean from environment variable or returns default value.
// It accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	logger := envLogger()
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logDefault(logger, key, ok)
		return defaultValue
	}
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		logger.Warn().Str("key", key).Str("value", v).Bool("default", defaultValue).
			Msg("invalid boolean in environment variable, using default")
		return defaultValue
	}
}
