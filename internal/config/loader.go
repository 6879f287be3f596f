// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads vidmux configuration from defaults, a YAML file and
// VIDMUX_* environment variables, in increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles configuration loading with precedence
type Loader struct {
	configPath      string
	version         string
	ConsumedEnvKeys map[string]struct{}
}

// NewLoader creates a new configuration loader
func NewLoader(configPath, version string) *Loader {
	return &Loader{
		configPath:      configPath,
		version:         version,
		ConsumedEnvKeys: make(map[string]struct{}),
	}
}

// Path returns the config file path, empty when running from ENV only.
func (l *Loader) Path() string {
	return l.configPath
}

// Load loads configuration with precedence: ENV > File > Defaults, then validates.
func (l *Loader) Load() (AppConfig, error) {
	cfg := Defaults()

	if l.configPath != "" {
		if err := l.loadFile(l.configPath, &cfg); err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
	}

	l.mergeEnv(&cfg)

	if abs, err := filepath.Abs(cfg.Output.Dir); err == nil {
		cfg.Output.Dir = abs
	}
	cfg.Version = l.version

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadFile decodes a YAML file over cfg with STRICT parsing.
// Unknown fields are rejected to catch typos.
func (l *Loader) loadFile(path string, cfg *AppConfig) error {
	path = filepath.Clean(path)

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("unsupported config format: %s (only YAML supported)", ext)
	}

	// #nosec G304 -- configuration file paths are provided by the operator via CLI/ENV
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("strict config parse error: %w", err)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("config file contains multiple documents or trailing content")
	}
	return nil
}

func (l *Loader) envString(key, def string) string {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseString(key, def)
}

func (l *Loader) envInt(key string, def int) int {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseInt(key, def)
}

func (l *Loader) envBool(key string, def bool) bool {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseBool(key, def)
}

func (l *Loader) envFloat(key string, def float64) float64 {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseFloat(key, def)
}

func (l *Loader) envDuration(key string, def time.Duration) time.Duration {
	l.ConsumedEnvKeys[key] = struct{}{}
	return ParseDuration(key, def)
}
