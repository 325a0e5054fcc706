// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

// Package tracker owns the daemon's in-memory OBS state together with the
// wall-clock timers used to derive recording and streaming durations.
//
// A StateTracker has a single writer (the daemon loop). It is not safe for
// concurrent use.
package tracker

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/obsbridge/internal/models"
)

// StateTracker pairs the published state with process-local timers.
type StateTracker struct {
	clock clockwork.Clock
	state models.ObsState

	recording activityTimer
	streaming activityTimer

	// last sample of the stream's cumulative byte counter, for bitrate
	streamBytes    uint64
	streamSampleAt time.Time
}

// New returns a tracker in the fully disconnected state.
func New(clock clockwork.Clock) *StateTracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StateTracker{clock: clock, state: models.NewObsState()}
}

// Connected reports the connected flag of the current state.
func (t *StateTracker) Connected() bool { return t.state.Connected }

// SetConnected marks the state connected and clears the last error.
func (t *StateTracker) SetConnected() {
	t.state.SetConnected()
}

// SetDisconnected marks the state disconnected, stops both timers and
// drops the stats snapshot. reason becomes the published error; "" clears it.
func (t *StateTracker) SetDisconnected(reason string) {
	t.state.SetDisconnected(reason)
	t.state.Stats = nil
	t.recording.stop()
	t.streaming.stop()
	t.resetStreamSample()
}

// ApplyRecording merges the remote record output status.
//
// A transition from inactive to active starts the local timer, anchored at
// remoteElapsed so that a daemon started mid-recording reports the true
// duration. Pausing freezes the timer without resetting it. A transition
// to inactive resets the recording state to idle.
func (t *StateTracker) ApplyRecording(active, paused bool, remoteElapsed time.Duration) {
	now := t.clock.Now()

	if !active {
		if t.state.Recording.Active || t.recording.running() {
			t.recording.stop()
			t.state.Recording = models.RecordingState{}
		}
		return
	}

	if !t.state.Recording.Active || !t.recording.running() {
		t.recording.start(now, remoteElapsed)
		t.state.Recording.Active = true
	}

	if paused {
		t.recording.pause(now)
	} else {
		t.recording.resume(now)
	}
	t.state.Recording.Paused = paused
}

// ApplyStreaming merges the remote stream output status. totalBytes is the
// output's cumulative byte counter, used to derive the bitrate.
func (t *StateTracker) ApplyStreaming(active, reconnecting bool, totalBytes uint64, remoteElapsed time.Duration) {
	now := t.clock.Now()

	if !active {
		if t.state.Streaming.Active || t.streaming.running() {
			t.streaming.stop()
			t.state.Streaming = models.StreamingState{}
		}
		t.resetStreamSample()
		return
	}

	if !t.state.Streaming.Active || !t.streaming.running() {
		t.streaming.start(now, remoteElapsed)
		t.state.Streaming.Active = true
		t.resetStreamSample()
	}
	t.state.Streaming.Reconnecting = reconnecting
	t.sampleBitrate(now, totalBytes)
}

func (t *StateTracker) sampleBitrate(now time.Time, totalBytes uint64) {
	switch {
	case t.streamSampleAt.IsZero():
	case totalBytes < t.streamBytes:
		// counter went backwards; the previous rate no longer applies
		t.state.Streaming.BitrateKbps = nil
	default:
		if secs := now.Sub(t.streamSampleAt).Seconds(); secs > 0 {
			kbps := uint32(float64(totalBytes-t.streamBytes) * 8 / 1000 / secs)
			t.state.Streaming.BitrateKbps = &kbps
		}
	}
	t.streamBytes = totalBytes
	t.streamSampleAt = now
}

func (t *StateTracker) resetStreamSample() {
	t.streamBytes = 0
	t.streamSampleAt = time.Time{}
	t.state.Streaming.BitrateKbps = nil
}

// SetCurrentScene overwrites the current program scene.
func (t *StateTracker) SetCurrentScene(name string) {
	t.state.CurrentScene = name
}

// SetScenes overwrites the scene list.
func (t *StateTracker) SetScenes(names []string) {
	scenes := make([]string, len(names))
	copy(scenes, names)
	t.state.Scenes = scenes
}

// SetStats overwrites the stats snapshot, recomputing drop percentages.
func (t *StateTracker) SetStats(stats models.Stats) {
	stats.CalculatePercentages()
	t.state.Stats = &stats
}

// ClearStats removes the stats snapshot.
func (t *StateTracker) ClearStats() {
	t.state.Stats = nil
}

// RecordingElapsed returns the locally measured recording duration.
func (t *StateTracker) RecordingElapsed() time.Duration {
	return t.recording.elapsed(t.clock.Now())
}

// StreamingElapsed returns the locally measured streaming duration.
func (t *StateTracker) StreamingElapsed() time.Duration {
	return t.streaming.elapsed(t.clock.Now())
}

// UpdateElapsed refreshes elapsed seconds, timecodes and the update
// timestamp, and returns a snapshot ready to publish.
func (t *StateTracker) UpdateElapsed() models.ObsState {
	now := t.clock.Now()

	if t.state.Recording.Active && t.recording.running() {
		secs := uint64(t.recording.elapsed(now) / time.Second)
		t.state.Recording.ElapsedSecs = secs
		t.state.Recording.Timecode = models.FormatTimecode(secs)
	}
	if t.state.Streaming.Active && t.streaming.running() {
		secs := uint64(t.streaming.elapsed(now) / time.Second)
		t.state.Streaming.ElapsedSecs = secs
		t.state.Streaming.Timecode = models.FormatTimecode(secs)
	}

	t.state.UpdatedAt = uint64(now.Unix())
	return t.state.Clone()
}

// Snapshot returns a copy of the current state without touching timers.
func (t *StateTracker) Snapshot() models.ObsState {
	return t.state.Clone()
}
