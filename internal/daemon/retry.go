// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package daemon

import (
	"fmt"
	"time"
)

// Retry defaults.
const (
	// FastThreshold is the number of consecutive failures retried at the
	// configured reconnect interval before switching to slow mode.
	FastThreshold = 10

	DefaultReconnectInterval = 5 * time.Second
	DefaultSlowDelay         = 60 * time.Second
)

// RetryPolicy configures the two-tier reconnect backoff.
type RetryPolicy struct {
	// ReconnectInterval is the delay while in fast mode.
	ReconnectInterval time.Duration

	// SlowDelay is the delay once FastThreshold is exceeded.
	SlowDelay time.Duration

	// FastThreshold overrides the package constant when non-zero.
	FastThreshold uint32

	// MaxAttempts ends the daemon once consecutive failures exceed it.
	// Zero means retry forever.
	MaxAttempts uint32
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.ReconnectInterval <= 0 {
		p.ReconnectInterval = DefaultReconnectInterval
	}
	if p.SlowDelay <= 0 {
		p.SlowDelay = DefaultSlowDelay
	}
	if p.FastThreshold == 0 {
		p.FastThreshold = FastThreshold
	}
	return p
}

// FatalError is returned by Run when MaxAttempts is exceeded.
type FatalError struct {
	Attempts uint32
	Max      uint32
	Err      error // the last connection error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("giving up after %d consecutive failures (max %d): %v", e.Attempts, e.Max, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// RetryState counts consecutive failures. The zero value is ready to use.
type RetryState struct {
	ConsecutiveFailures uint32
	SlowMode            bool
}

// RetryDecision describes what to do after a failure.
type RetryDecision struct {
	Delay   time.Duration
	Attempt uint32

	// EnteredSlowMode is set on the failure that crossed the threshold.
	EnteredSlowMode bool

	// ResumedFast is set when a lost session ended slow mode.
	ResumedFast bool

	// SlowMode reports whether Delay is the slow-mode delay.
	SlowMode bool
}

// Failure records one failure and returns the backoff decision.
//
// wasConnected must be read from the state model before it is marked
// disconnected. Losing a working session while in slow mode restarts the
// count at 1 in fast mode; any other failure increments the count, so a
// peer that keeps dropping sessions still exhausts MaxAttempts.
func (s *RetryState) Failure(p RetryPolicy, wasConnected bool, cause error) (RetryDecision, error) {
	p = p.withDefaults()

	var d RetryDecision
	if wasConnected && s.SlowMode {
		d.ResumedFast = true
		s.ConsecutiveFailures = 1
		s.SlowMode = false
	} else {
		s.ConsecutiveFailures++
	}
	d.Attempt = s.ConsecutiveFailures

	if p.MaxAttempts > 0 && s.ConsecutiveFailures > p.MaxAttempts {
		return d, &FatalError{Attempts: s.ConsecutiveFailures, Max: p.MaxAttempts, Err: cause}
	}

	if s.ConsecutiveFailures > p.FastThreshold {
		if !s.SlowMode {
			s.SlowMode = true
			d.EnteredSlowMode = true
		}
		d.SlowMode = true
		d.Delay = p.SlowDelay
		return d, nil
	}

	d.Delay = p.ReconnectInterval
	return d, nil
}

// Reset clears the counter and leaves slow mode.
func (s *RetryState) Reset() {
	s.ConsecutiveFailures = 0
	s.SlowMode = false
}
