// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package obstest

import (
	"context"
	"sync"

	"github.com/tomtom215/obsbridge/internal/obs"
)

// FakeSession is an in-memory obs.Session. Commands mutate its state the
// way OBS would, and any request type can be made to fail.
type FakeSession struct {
	mu         sync.Mutex
	record     obs.RecordStatus
	stream     obs.StreamStatus
	scene      string
	scenes     []obs.Scene
	stats      obs.Stats
	outputPath string
	failures   map[string]error
	calls      []string
	closed     bool
}

// NewFakeSession returns an idle session with no scenes.
func NewFakeSession() *FakeSession {
	return &FakeSession{
		outputPath: "/tmp/recording.mkv",
		failures:   make(map[string]error),
	}
}

// SetRecording sets the record output status.
func (f *FakeSession) SetRecording(active, paused bool, durationMs float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record = obs.RecordStatus{OutputActive: active, OutputPaused: paused, OutputDuration: durationMs}
}

// SetStreaming sets the stream output status.
func (f *FakeSession) SetStreaming(active, reconnecting bool, bytes uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stream = obs.StreamStatus{OutputActive: active, OutputReconnecting: reconnecting, OutputBytes: bytes}
}

// SetScenes sets the program scene and the scene list (in dock order).
func (f *FakeSession) SetScenes(current string, names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scene = current
	f.scenes = make([]obs.Scene, len(names))
	for i, n := range names {
		idx := len(names) - 1 - i
		f.scenes[idx] = obs.Scene{SceneName: n, SceneIndex: idx}
	}
}

// SetStats sets the GetStats response.
func (f *FakeSession) SetStats(s obs.Stats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats = s
}

// FailWith makes requestType return err. A nil err clears the failure.
func (f *FakeSession) FailWith(requestType string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, requestType)
		return
	}
	f.failures[requestType] = err
}

// Calls returns the request types issued so far.
func (f *FakeSession) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times requestType was issued.
func (f *FakeSession) CallCount(requestType string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == requestType {
			n++
		}
	}
	return n
}

// Closed reports whether Close was called.
func (f *FakeSession) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// begin records the call and returns the configured failure (must hold mu).
func (f *FakeSession) begin(requestType string) error {
	f.calls = append(f.calls, requestType)
	if f.closed {
		return obs.ErrClosed
	}
	return f.failures[requestType]
}

func outputError(requestType string, code int) error {
	return &obs.RequestError{RequestType: requestType, Code: code}
}

func (f *FakeSession) GetRecordStatus(context.Context) (*obs.RecordStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqGetRecordStatus); err != nil {
		return nil, err
	}
	r := f.record
	return &r, nil
}

func (f *FakeSession) GetStreamStatus(context.Context) (*obs.StreamStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqGetStreamStatus); err != nil {
		return nil, err
	}
	s := f.stream
	return &s, nil
}

func (f *FakeSession) GetCurrentProgramScene(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqGetCurrentProgramScene); err != nil {
		return "", err
	}
	return f.scene, nil
}

func (f *FakeSession) GetSceneList(context.Context) (*obs.SceneList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqGetSceneList); err != nil {
		return nil, err
	}
	scenes := make([]obs.Scene, len(f.scenes))
	copy(scenes, f.scenes)
	return &obs.SceneList{CurrentProgramSceneName: f.scene, Scenes: scenes}, nil
}

func (f *FakeSession) GetStats(context.Context) (*obs.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqGetStats); err != nil {
		return nil, err
	}
	s := f.stats
	return &s, nil
}

func (f *FakeSession) StartRecord(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqStartRecord); err != nil {
		return err
	}
	if f.record.OutputActive {
		return outputError(obs.ReqStartRecord, obs.CodeOutputRunning)
	}
	f.record = obs.RecordStatus{OutputActive: true}
	return nil
}

func (f *FakeSession) StopRecord(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqStopRecord); err != nil {
		return "", err
	}
	if !f.record.OutputActive {
		return "", outputError(obs.ReqStopRecord, obs.CodeOutputNotRunning)
	}
	f.record = obs.RecordStatus{}
	return f.outputPath, nil
}

func (f *FakeSession) ToggleRecordPause(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqToggleRecordPause); err != nil {
		return false, err
	}
	if !f.record.OutputActive {
		return false, outputError(obs.ReqToggleRecordPause, obs.CodeOutputNotRunning)
	}
	f.record.OutputPaused = !f.record.OutputPaused
	return f.record.OutputPaused, nil
}

func (f *FakeSession) StartStream(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqStartStream); err != nil {
		return err
	}
	if f.stream.OutputActive {
		return outputError(obs.ReqStartStream, obs.CodeOutputRunning)
	}
	f.stream = obs.StreamStatus{OutputActive: true}
	return nil
}

func (f *FakeSession) StopStream(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqStopStream); err != nil {
		return err
	}
	if !f.stream.OutputActive {
		return outputError(obs.ReqStopStream, obs.CodeOutputNotRunning)
	}
	f.stream = obs.StreamStatus{}
	return nil
}

func (f *FakeSession) SetCurrentProgramScene(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(obs.ReqSetCurrentProgramScene); err != nil {
		return err
	}
	for _, s := range f.scenes {
		if s.SceneName == name {
			f.scene = name
			return nil
		}
	}
	return &obs.RequestError{RequestType: obs.ReqSetCurrentProgramScene, Code: obs.CodeResourceNotFound, Comment: "No source was found by the name of `" + name + "`."}
}

func (f *FakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// DialFunc decides the outcome of the n-th dial (1-based).
type DialFunc func(ctx context.Context, attempt int) (obs.Session, error)

// FakeDialer is an obs.Dialer driven by a DialFunc.
type FakeDialer struct {
	mu       sync.Mutex
	fn       DialFunc
	attempts int
}

// NewFakeDialer returns a dialer that delegates to fn.
func NewFakeDialer(fn DialFunc) *FakeDialer {
	return &FakeDialer{fn: fn}
}

// Dial implements obs.Dialer.
func (d *FakeDialer) Dial(ctx context.Context) (obs.Session, error) {
	d.mu.Lock()
	d.attempts++
	n := d.attempts
	d.mu.Unlock()
	return d.fn(ctx, n)
}

// Attempts returns how many times Dial was called.
func (d *FakeDialer) Attempts() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

var (
	_ obs.Session = (*FakeSession)(nil)
	_ obs.Dialer  = (*FakeDialer)(nil)
)
