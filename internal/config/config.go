// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all daemon and CLI configuration.
type Config struct {
	OBS     OBSConfig     `koanf:"obs"`
	State   StateConfig   `koanf:"state"`
	Logging LoggingConfig `koanf:"logging"`
	Metrics MetricsConfig `koanf:"metrics"`
	NATS    NATSConfig    `koanf:"nats"`
}

// OBSConfig holds the obs-websocket connection and polling settings.
type OBSConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"min=1,max=65535"`
	Password string `koanf:"password"`

	// StatsIntervalMS is the reconciliation period while connected.
	StatsIntervalMS int `koanf:"stats_interval_ms" validate:"min=100"`

	// ReconnectIntervalMS is the fast-mode reconnect delay.
	ReconnectIntervalMS int `koanf:"reconnect_interval_ms" validate:"min=1"`

	// MaxReconnectAttempts stops the daemon after this many consecutive
	// failures. 0 = unlimited.
	MaxReconnectAttempts uint32 `koanf:"max_reconnect_attempts"`

	ShowStats      bool          `koanf:"show_stats"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
}

// StatsInterval returns StatsIntervalMS as a duration.
func (c OBSConfig) StatsInterval() time.Duration {
	return time.Duration(c.StatsIntervalMS) * time.Millisecond
}

// ReconnectInterval returns ReconnectIntervalMS as a duration.
func (c OBSConfig) ReconnectInterval() time.Duration {
	return time.Duration(c.ReconnectIntervalMS) * time.Millisecond
}

// StateConfig locates the published state file.
type StateConfig struct {
	Dir     string `koanf:"dir" validate:"required"`
	Service string `koanf:"service" validate:"required,excludesall=/\\"`
}

// StatePath returns <dir>/<service>-state.json.
func (c StateConfig) StatePath() string {
	return filepath.Join(c.Dir, c.Service+"-state.json")
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig holds the optional HTTP telemetry surface settings.
type MetricsConfig struct {
	Enabled     bool     `koanf:"enabled"`
	Listen      string   `koanf:"listen" validate:"required,hostname_port"`
	RateLimit   int      `koanf:"rate_limit" validate:"min=0"`
	CORSOrigins []string `koanf:"cors_origins"`
}

// NATSConfig holds the optional state mirror settings.
type NATSConfig struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	SubjectPrefix string `koanf:"subject_prefix" validate:"required"`
}

// Subject returns the subject snapshots for service are published on.
func (c NATSConfig) Subject(service string) string {
	return c.SubjectPrefix + "." + service
}

// defaultStateDir returns $XDG_STATE_HOME/fern, falling back to
// ~/.local/state/fern.
func defaultStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "fern")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "fern")
	}
	return filepath.Join(home, ".local", "state", "fern")
}

// userConfigDir returns $XDG_CONFIG_HOME, falling back to ~/.config.
func userConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}
