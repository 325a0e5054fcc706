// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection Metrics
	Connected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "obsbridge_connected",
			Help: "Whether the daemon currently holds an OBS session (1) or not (0)",
		},
	)

	ConnectionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obsbridge_connection_attempts_total",
			Help: "Total number of OBS connection attempts",
		},
		[]string{"result"}, // "success", "failure"
	)

	ConsecutiveFailures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "obsbridge_consecutive_failures",
			Help: "Current number of consecutive connection failures",
		},
	)

	SlowMode = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "obsbridge_slow_mode",
			Help: "Whether the reconnect policy is in slow mode (1) or fast mode (0)",
		},
	)

	ReconnectDelay = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "obsbridge_reconnect_delay_seconds",
			Help: "Delay before the next reconnect attempt",
		},
	)

	// OBS Request Metrics
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "obsbridge_obs_request_duration_seconds",
			Help:    "Duration of obs-websocket requests in seconds",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
		[]string{"request_type"},
	)

	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obsbridge_obs_requests_total",
			Help: "Total number of obs-websocket requests",
		},
		[]string{"request_type", "result"}, // result: "success", "request_error", "transport_error"
	)

	// Reconciliation Metrics
	ReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "obsbridge_reconcile_duration_seconds",
			Help:    "Duration of a full state reconciliation",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	ReconcileRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obsbridge_reconcile_request_errors_total",
			Help: "Total number of tolerated request errors during reconciliation",
		},
		[]string{"dimension"}, // "recording", "streaming", "scene", "scenes", "stats"
	)

	// State File Metrics
	PublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "obsbridge_state_publish_duration_seconds",
			Help:    "Duration of atomic state file publishes",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .5},
		},
	)

	PublishErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obsbridge_state_publish_errors_total",
			Help: "Total number of failed state file publishes",
		},
		[]string{"step"}, // "encode", "create", "write", "chmod", "sync", "close", "rename"
	)

	LastPublish = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "obsbridge_state_last_publish_timestamp_seconds",
			Help: "Unix timestamp of the last successful state publish",
		},
	)

	// State Mirror Metrics
	MirrorPublishes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obsbridge_mirror_publishes_total",
			Help: "Total number of state snapshots mirrored to NATS",
		},
		[]string{"result"}, // "success", "failure"
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "obsbridge_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obsbridge_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "obsbridge_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordRequest records an obs-websocket request outcome.
// result is one of "success", "request_error" or "transport_error".
func RecordRequest(requestType, result string, duration time.Duration) {
	RequestDuration.WithLabelValues(requestType).Observe(duration.Seconds())
	Requests.WithLabelValues(requestType, result).Inc()
}

// RecordConnectionAttempt records the outcome of a session acquisition.
func RecordConnectionAttempt(err error) {
	if err != nil {
		ConnectionAttempts.WithLabelValues("failure").Inc()
		return
	}
	ConnectionAttempts.WithLabelValues("success").Inc()
}

// SetConnected updates the connection gauge.
func SetConnected(connected bool) {
	Connected.Set(boolToFloat(connected))
}

// UpdateRetryState mirrors the reconnect policy state into gauges.
func UpdateRetryState(failures uint32, slowMode bool, delay time.Duration) {
	ConsecutiveFailures.Set(float64(failures))
	SlowMode.Set(boolToFloat(slowMode))
	ReconnectDelay.Set(delay.Seconds())
}

// ResetRetryState clears the reconnect policy gauges after a successful connection.
func ResetRetryState() {
	ConsecutiveFailures.Set(0)
	SlowMode.Set(0)
	ReconnectDelay.Set(0)
}

// RecordPublish records a state file publish. step names the failing
// stage and is ignored on success.
func RecordPublish(duration time.Duration, step string, err error) {
	PublishDuration.Observe(duration.Seconds())
	if err != nil {
		PublishErrors.WithLabelValues(step).Inc()
		return
	}
	LastPublish.Set(float64(time.Now().Unix()))
}

// RecordMirrorPublish records a NATS mirror publish outcome.
func RecordMirrorPublish(err error) {
	if err != nil {
		MirrorPublishes.WithLabelValues("failure").Inc()
		return
	}
	MirrorPublishes.WithLabelValues("success").Inc()
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
