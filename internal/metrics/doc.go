// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

/*
Package metrics provides Prometheus metrics for the OBS bridge daemon.

All collectors are registered on the default registry via promauto and are
exposed by the optional telemetry server at /metrics:

	curl http://127.0.0.1:9465/metrics

# Available Metrics

Connection:
  - obsbridge_connected (gauge)
  - obsbridge_connection_attempts_total (counter), labels: result
  - obsbridge_consecutive_failures (gauge)
  - obsbridge_slow_mode (gauge)
  - obsbridge_reconnect_delay_seconds (gauge)

OBS requests:
  - obsbridge_obs_request_duration_seconds (histogram), labels: request_type
  - obsbridge_obs_requests_total (counter), labels: request_type, result

Reconciliation and state file:
  - obsbridge_reconcile_duration_seconds (histogram)
  - obsbridge_reconcile_request_errors_total (counter), labels: dimension
  - obsbridge_state_publish_duration_seconds (histogram)
  - obsbridge_state_publish_errors_total (counter), labels: step
  - obsbridge_state_last_publish_timestamp_seconds (gauge)
  - obsbridge_mirror_publishes_total (counter), labels: result

Circuit breakers:
  - obsbridge_circuit_breaker_state (gauge), labels: name
  - obsbridge_circuit_breaker_requests_total (counter), labels: name, result
  - obsbridge_circuit_breaker_state_transitions_total (counter), labels: name, from_state, to_state

Metrics are recorded even when the telemetry server is disabled; the cost
is a few atomic operations per tick.
*/
package metrics
