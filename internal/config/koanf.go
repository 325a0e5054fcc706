// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "OBSBRIDGE_CONFIG"

// localConfigFile is checked in the working directory.
const localConfigFile = "obsbridge.yaml"

// defaultConfig returns a Config with every default applied.
// Defaults are loaded first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		OBS: OBSConfig{
			Host:                 "localhost",
			Port:                 4455,
			StatsIntervalMS:      1000,
			ReconnectIntervalMS:  5000,
			MaxReconnectAttempts: 0, // unlimited
			ShowStats:            true,
			RequestTimeout:       5 * time.Second,
		},
		State: StateConfig{
			Dir:     defaultStateDir(),
			Service: "obs",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled:     false,
			Listen:      "127.0.0.1:9465",
			RateLimit:   120,
			CORSOrigins: []string{},
		},
		NATS: NATSConfig{
			Enabled:       false,
			URL:           "nats://127.0.0.1:4222",
			SubjectPrefix: "obsbridge.state",
		},
	}
}

// Default returns the built-in defaults without reading files or the
// environment.
func Default() *Config {
	return defaultConfig()
}

// Load builds the configuration from, in increasing priority:
//  1. Built-in defaults
//  2. The YAML config file (explicitPath, OBSBRIDGE_CONFIG, ./obsbridge.yaml,
//     then $XDG_CONFIG_HOME/obsbridge/config.yaml)
//  3. Environment variables (see envMappings)
//
// An explicitPath that does not exist is an error; the other locations
// are optional. CLI flags are applied by the caller, which must call
// Validate afterwards.
func Load(explicitPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	configPath, err := findConfigFile(explicitPath)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// SearchPaths returns the config file locations checked when no explicit
// path is given, in priority order.
func SearchPaths() []string {
	var paths []string
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, localConfigFile)
	if dir := userConfigDir(); dir != "" {
		paths = append(paths, filepath.Join(dir, "obsbridge", "config.yaml"))
	}
	return paths
}

// findConfigFile returns the first existing config file, or "" if none.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}

	for _, path := range SearchPaths() {
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
	}
	return "", nil
}

// sliceConfigPaths lists keys that accept comma-separated env values.
var sliceConfigPaths = []string{
	"metrics.cors_origins",
}

// processSliceFields splits comma-separated strings from env vars into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to config keys.
var envMappings = map[string]string{
	"obs_host":                   "obs.host",
	"obs_port":                   "obs.port",
	"obs_password":               "obs.password",
	"obs_stats_interval_ms":      "obs.stats_interval_ms",
	"obs_reconnect_interval_ms":  "obs.reconnect_interval_ms",
	"obs_max_reconnect_attempts": "obs.max_reconnect_attempts",
	"obs_show_stats":             "obs.show_stats",
	"obs_request_timeout":        "obs.request_timeout",

	"obsbridge_state_dir": "state.dir",
	"obsbridge_service":   "state.service",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"metrics_enabled":      "metrics.enabled",
	"metrics_listen":       "metrics.listen",
	"metrics_rate_limit":   "metrics.rate_limit",
	"metrics_cors_origins": "metrics.cors_origins",

	"nats_enabled":        "nats.enabled",
	"nats_url":            "nats.url",
	"nats_subject_prefix": "nats.subject_prefix",
}

// envTransformFunc maps environment variable names to config keys.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never leak into the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
