// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package tracker

import "time"

// activityTimer measures how long an output has been active, excluding
// time spent paused. The zero value is a stopped timer.
type activityTimer struct {
	started     time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
}

func (t *activityTimer) running() bool { return !t.started.IsZero() }

func (t *activityTimer) paused() bool { return !t.pausedAt.IsZero() }

// start anchors the timer so that it already reports offset at now.
func (t *activityTimer) start(now time.Time, offset time.Duration) {
	*t = activityTimer{started: now.Add(-offset)}
}

func (t *activityTimer) stop() {
	*t = activityTimer{}
}

func (t *activityTimer) pause(now time.Time) {
	if !t.running() || t.paused() {
		return
	}
	t.pausedAt = now
}

func (t *activityTimer) resume(now time.Time) {
	if !t.paused() {
		return
	}
	if d := now.Sub(t.pausedAt); d > 0 {
		t.pausedTotal += d
	}
	t.pausedAt = time.Time{}
}

// elapsed is frozen while paused and zero when stopped.
func (t *activityTimer) elapsed(now time.Time) time.Duration {
	if !t.running() {
		return 0
	}
	end := now
	if t.paused() {
		end = t.pausedAt
	}
	d := end.Sub(t.started) - t.pausedTotal
	if d < 0 {
		return 0
	}
	return d
}
