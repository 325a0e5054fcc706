// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points every search location at an empty temp directory so the
// developer's own config never leaks into tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	t.Setenv(ConfigPathEnvVar, "")
	for env := range envMappings {
		t.Setenv(strings.ToUpper(env), "")
		os.Unsetenv(strings.ToUpper(env))
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	if cfg.OBS.Host != "localhost" || cfg.OBS.Port != 4455 {
		t.Errorf("address = %s:%d", cfg.OBS.Host, cfg.OBS.Port)
	}
	if cfg.OBS.StatsInterval() != time.Second {
		t.Errorf("StatsInterval = %v", cfg.OBS.StatsInterval())
	}
	if cfg.OBS.ReconnectInterval() != 5*time.Second {
		t.Errorf("ReconnectInterval = %v", cfg.OBS.ReconnectInterval())
	}
	if cfg.OBS.MaxReconnectAttempts != 0 || !cfg.OBS.ShowStats {
		t.Errorf("unexpected retry/stats defaults: %+v", cfg.OBS)
	}
	if cfg.OBS.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.OBS.RequestTimeout)
	}
	if want := filepath.Join(dir, "state", "fern", "obs-state.json"); cfg.State.StatePath() != want {
		t.Errorf("StatePath = %q, want %q", cfg.State.StatePath(), want)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if cfg.Metrics.Enabled || cfg.Metrics.Listen != "127.0.0.1:9465" || cfg.Metrics.RateLimit != 120 {
		t.Errorf("unexpected metrics defaults: %+v", cfg.Metrics)
	}
	if cfg.NATS.Enabled || cfg.NATS.Subject("obs") != "obsbridge.state.obs" {
		t.Errorf("unexpected nats defaults: %+v", cfg.NATS)
	}
}

func TestStateDirFallsBackToHome(t *testing.T) {
	isolate(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")

	if got, want := defaultStateDir(), filepath.Join(home, ".local", "state", "fern"); got != want {
		t.Errorf("defaultStateDir = %q, want %q", got, want)
	}
}

func TestLoadFileAndEnvPrecedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, `
obs:
  host: studio.local
  port: 4460
  stats_interval_ms: 500
  request_timeout: 2s
state:
  service: streamdeck
metrics:
  cors_origins: ["http://localhost:3000"]
`)

	t.Setenv("OBS_PORT", "4470")
	t.Setenv("OBS_SHOW_STATS", "false")
	t.Setenv("OBS_MAX_RECONNECT_ATTEMPTS", "7")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OBS.Host != "studio.local" {
		t.Errorf("file value lost: host = %q", cfg.OBS.Host)
	}
	if cfg.OBS.Port != 4470 {
		t.Errorf("env should override file: port = %d", cfg.OBS.Port)
	}
	if cfg.OBS.StatsIntervalMS != 500 || cfg.OBS.RequestTimeout != 2*time.Second {
		t.Errorf("unexpected intervals: %+v", cfg.OBS)
	}
	if cfg.OBS.ShowStats || cfg.OBS.MaxReconnectAttempts != 7 {
		t.Errorf("env values not applied: %+v", cfg.OBS)
	}
	if cfg.OBS.ReconnectIntervalMS != 5000 {
		t.Errorf("defaults should survive partial file: %d", cfg.OBS.ReconnectIntervalMS)
	}
	if cfg.State.Service != "streamdeck" || !strings.HasSuffix(cfg.State.StatePath(), "streamdeck-state.json") {
		t.Errorf("unexpected state path %q", cfg.State.StatePath())
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("LOG_FORMAT not applied: %q", cfg.Logging.Format)
	}
	if len(cfg.Metrics.CORSOrigins) != 1 || cfg.Metrics.CORSOrigins[0] != "http://localhost:3000" {
		t.Errorf("unexpected CORS origins: %v", cfg.Metrics.CORSOrigins)
	}
}

func TestSearchPaths(t *testing.T) {
	dir := isolate(t)

	t.Run("xdg config home", func(t *testing.T) {
		writeFile(t, filepath.Join(dir, "obsbridge", "config.yaml"), "obs:\n  host: xdg-host\n")
		cfg, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		if cfg.OBS.Host != "xdg-host" {
			t.Errorf("host = %q, want xdg-host", cfg.OBS.Host)
		}
	})

	t.Run("env var wins over xdg", func(t *testing.T) {
		path := filepath.Join(dir, "env.yaml")
		writeFile(t, path, "obs:\n  host: env-host\n")
		t.Setenv(ConfigPathEnvVar, path)

		cfg, err := Load("")
		if err != nil {
			t.Fatal(err)
		}
		if cfg.OBS.Host != "env-host" {
			t.Errorf("host = %q, want env-host", cfg.OBS.Host)
		}
	})
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	writeFile(t, path, "obs: [unclosed")

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCORSOriginsFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("METRICS_CORS_ORIGINS", "http://a.test, http://b.test ,")

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://a.test", "http://b.test"}
	if len(cfg.Metrics.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Metrics.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Metrics.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Metrics.CORSOrigins[i], want[i])
		}
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"OBS_HOST", "obs.host"},
		{"OBS_STATS_INTERVAL_MS", "obs.stats_interval_ms"},
		{"OBSBRIDGE_STATE_DIR", "state.dir"},
		{"NATS_SUBJECT_PREFIX", "nats.subject_prefix"},
		{"HOME", ""},
		{"PATH", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
