// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

/*
Package config loads OBSBridge configuration with koanf.

# Configuration Sources

Sources are layered, later ones overriding earlier ones:

  - Built-in defaults (koanf structs provider)
  - A YAML file: --config, $OBSBRIDGE_CONFIG, ./obsbridge.yaml or
    $XDG_CONFIG_HOME/obsbridge/config.yaml, first match wins
  - Environment variables
  - Command-line flags, applied by cmd/obsbridge

# Example File

	obs:
	  host: localhost
	  port: 4455
	  password: secret
	  stats_interval_ms: 1000
	  reconnect_interval_ms: 5000
	  max_reconnect_attempts: 0
	  show_stats: true
	  request_timeout: 5s
	state:
	  dir: /home/me/.local/state/fern
	  service: obs
	logging:
	  level: info
	  format: console
	metrics:
	  enabled: true
	  listen: 127.0.0.1:9465
	nats:
	  enabled: false
	  url: nats://127.0.0.1:4222

# Environment Variables

OBS connection:
  - OBS_HOST, OBS_PORT, OBS_PASSWORD
  - OBS_STATS_INTERVAL_MS (default: 1000)
  - OBS_RECONNECT_INTERVAL_MS (default: 5000)
  - OBS_MAX_RECONNECT_ATTEMPTS (default: 0, unlimited)
  - OBS_SHOW_STATS (default: true)
  - OBS_REQUEST_TIMEOUT (default: 5s)

State file:
  - OBSBRIDGE_STATE_DIR (default: $XDG_STATE_HOME/fern)
  - OBSBRIDGE_SERVICE (default: obs)

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

Telemetry:
  - METRICS_ENABLED, METRICS_LISTEN, METRICS_RATE_LIMIT
  - METRICS_CORS_ORIGINS (comma-separated)
  - NATS_ENABLED, NATS_URL, NATS_SUBJECT_PREFIX

# Validation

Validate applies go-playground/validator tags and a few cross-field
rules. Errors name the config key:

	config: obs.port: must be at most 65535
*/
package config
