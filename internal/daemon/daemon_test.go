// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package daemon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/obsbridge/internal/metrics"
	"github.com/tomtom215/obsbridge/internal/models"
	"github.com/tomtom215/obsbridge/internal/obs"
	"github.com/tomtom215/obsbridge/internal/obs/obstest"
	obssync "github.com/tomtom215/obsbridge/internal/sync"
)

const waitTimeout = 5 * time.Second

type recordingPublisher struct {
	ch  chan models.ObsState
	err error
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{ch: make(chan models.ObsState, 256)}
}

func (p *recordingPublisher) Publish(state *models.ObsState) error {
	p.ch <- state.Clone()
	return p.err
}

func (p *recordingPublisher) next(t *testing.T) models.ObsState {
	t.Helper()
	select {
	case s := <-p.ch:
		return s
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for publish")
		return models.ObsState{}
	}
}

type countingMirror struct {
	mu    sync.Mutex
	count int
}

func (m *countingMirror) Publish(context.Context, *models.ObsState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	return errors.New("mirror unavailable")
}

func (m *countingMirror) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

type harness struct {
	daemon *Daemon
	clock  *clockwork.FakeClock
	pub    *recordingPublisher
	cancel context.CancelFunc
	done   chan error
}

func startDaemon(t *testing.T, cfg Config, dialer obs.Dialer, pub *recordingPublisher, mirror Mirror) *harness {
	t.Helper()

	clock := clockwork.NewFakeClock()
	if pub == nil {
		pub = newRecordingPublisher()
	}
	d, err := New(cfg, Options{
		Dialer:    dialer,
		Syncer:    obssync.NewReconciler(obssync.Config{}),
		Publisher: pub,
		Mirror:    mirror,
		Clock:     clock,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{daemon: d, clock: clock, pub: pub, cancel: cancel, done: make(chan error, 1)}
	go func() { h.done <- d.Run(ctx) }()
	t.Cleanup(cancel)
	return h
}

// advance waits until the loop is blocked on the clock, then moves it.
func (h *harness) advance(t *testing.T, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := h.clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("loop never waited on the clock: %v", err)
	}
	h.clock.Advance(d)
}

func (h *harness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return")
		return nil
	}
}

func refuse(context.Context, int) (obs.Session, error) {
	return nil, &obs.ConnectionError{Host: "localhost", Port: 4455, Err: errors.New("connection refused")}
}

func TestNewRequiresCollaborators(t *testing.T) {
	dialer := obstest.NewFakeDialer(refuse)
	syncer := obssync.NewReconciler(obssync.Config{})
	pub := newRecordingPublisher()

	tests := []struct {
		name string
		opts Options
	}{
		{name: "no dialer", opts: Options{Syncer: syncer, Publisher: pub}},
		{name: "no syncer", opts: Options{Dialer: dialer, Publisher: pub}},
		{name: "no publisher", opts: Options{Dialer: dialer, Syncer: syncer}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(Config{}, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunConnectsReconcilesAndShutsDown(t *testing.T) {
	session := obstest.NewFakeSession()
	session.SetScenes("Main", "Main", "BRB")
	dialer := obstest.NewFakeDialer(func(context.Context, int) (obs.Session, error) {
		return session, nil
	})
	mirror := &countingMirror{}

	h := startDaemon(t, Config{StatsInterval: time.Second}, dialer, nil, mirror)

	if s := h.pub.next(t); s.Connected {
		t.Fatal("first publish should be the disconnected startup state")
	}

	s := h.pub.next(t)
	if !s.Connected || s.CurrentScene != "Main" || len(s.Scenes) != 2 {
		t.Fatalf("unexpected connected state: %+v", s)
	}
	if testutil.ToFloat64(metrics.Connected) != 1 {
		t.Error("connected gauge should be 1")
	}

	session.SetRecording(true, false, 0)
	h.advance(t, time.Second)
	s = h.pub.next(t)
	if !s.Recording.Active || s.Recording.Timecode != "00:00" {
		t.Errorf("expected recording after tick, got %+v", s.Recording)
	}

	h.advance(t, time.Second)
	s = h.pub.next(t)
	if s.Recording.ElapsedSecs != 1 {
		t.Errorf("elapsed = %d, want 1", s.Recording.ElapsedSecs)
	}

	h.cancel()
	if err := h.wait(t); err != nil {
		t.Fatalf("Run returned %v on cancellation", err)
	}

	final := h.pub.next(t)
	if final.Connected || final.Recording.Active || final.Error != "" {
		t.Errorf("unexpected final state: %+v", final)
	}
	if !session.Closed() {
		t.Error("session should be closed on shutdown")
	}
	if dialer.Attempts() != 1 {
		t.Errorf("expected a single dial, got %d", dialer.Attempts())
	}
	if snap, ok := h.daemon.Snapshot(); !ok || snap.Connected {
		t.Errorf("Snapshot should reflect the final publish, got %+v ok=%v", snap, ok)
	}
	if h.daemon.Running() {
		t.Error("Running should be false after Run returns")
	}
	if mirror.Count() != 5 {
		t.Errorf("mirror saw %d publishes, want 5", mirror.Count())
	}
}

func TestRunGivesUpAfterMaxAttempts(t *testing.T) {
	dialer := obstest.NewFakeDialer(refuse)
	cfg := Config{Retry: RetryPolicy{ReconnectInterval: 5 * time.Second, MaxAttempts: 2}}

	h := startDaemon(t, cfg, dialer, nil, nil)
	h.pub.next(t)

	for i := 1; i <= 2; i++ {
		s := h.pub.next(t)
		if s.Connected || s.Error == "" {
			t.Fatalf("attempt %d: expected published connection error, got %+v", i, s)
		}
		h.advance(t, 5*time.Second)
	}

	err := h.wait(t)
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected *FatalError, got %v", err)
	}
	if fatal.Attempts != 3 || fatal.Max != 2 {
		t.Errorf("unexpected fatal error: %+v", fatal)
	}
	var connErr *obs.ConnectionError
	if !errors.As(err, &connErr) {
		t.Error("fatal error should wrap the connection error")
	}
	if s := h.pub.next(t); s.Error == "" {
		t.Error("the fatal failure should still be published")
	}
	if dialer.Attempts() != 3 {
		t.Errorf("dial attempts = %d, want 3", dialer.Attempts())
	}
}

func TestRunGivesUpWhenSessionsKeepDropping(t *testing.T) {
	dialer := obstest.NewFakeDialer(func(context.Context, int) (obs.Session, error) {
		session := obstest.NewFakeSession()
		session.FailWith(obs.ReqGetRecordStatus, fmt.Errorf("%w: read: connection reset", obs.ErrTransport))
		return session, nil
	})
	cfg := Config{Retry: RetryPolicy{ReconnectInterval: time.Second, MaxAttempts: 3}}

	h := startDaemon(t, cfg, dialer, nil, nil)
	h.pub.next(t)

	for i := 1; i <= 3; i++ {
		s := h.pub.next(t)
		if s.Connected || s.Error == "" {
			t.Fatalf("session %d: expected lost-session publish, got %+v", i, s)
		}
		h.advance(t, time.Second)
	}

	err := h.wait(t)
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected *FatalError, got %v", err)
	}
	if fatal.Attempts != 4 || fatal.Max != 3 {
		t.Errorf("unexpected fatal error: %+v", fatal)
	}
	if !errors.Is(err, obs.ErrTransport) {
		t.Error("fatal error should wrap the transport error")
	}
	if dialer.Attempts() != 4 {
		t.Errorf("dial attempts = %d, want 4", dialer.Attempts())
	}
}

func TestRunSwitchesToSlowModeAndBackAfterLostSession(t *testing.T) {
	broken := obstest.NewFakeSession()
	broken.FailWith(obs.ReqGetRecordStatus, fmt.Errorf("%w: read: connection reset", obs.ErrTransport))
	healthy := obstest.NewFakeSession()

	dialer := obstest.NewFakeDialer(func(ctx context.Context, attempt int) (obs.Session, error) {
		switch {
		case attempt <= 3:
			return refuse(ctx, attempt)
		case attempt == 4:
			return broken, nil
		default:
			return healthy, nil
		}
	})
	cfg := Config{Retry: RetryPolicy{
		ReconnectInterval: time.Second,
		SlowDelay:         time.Minute,
		FastThreshold:     2,
	}}

	h := startDaemon(t, cfg, dialer, nil, nil)
	h.pub.next(t)

	h.pub.next(t)
	h.advance(t, time.Second)
	h.pub.next(t)
	h.advance(t, time.Second)

	// third failure crosses the threshold
	if s := h.pub.next(t); !strings.HasSuffix(s.Error, "; retrying every 60s") {
		t.Errorf("slow mode should be published, got error %q", s.Error)
	}
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := h.clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if testutil.ToFloat64(metrics.SlowMode) != 1 {
		t.Error("expected slow mode gauge")
	}
	if testutil.ToFloat64(metrics.ReconnectDelay) != 60 {
		t.Errorf("reconnect delay = %v, want 60", testutil.ToFloat64(metrics.ReconnectDelay))
	}
	h.clock.Advance(time.Minute)

	// session 4 connects, then its transport fails during the initial sync
	lost := h.pub.next(t)
	if lost.Connected || lost.Error == "" {
		t.Fatalf("expected lost-session publish, got %+v", lost)
	}
	if strings.Contains(lost.Error, "retrying every") {
		t.Errorf("fast retry should not carry the slow-mode marker: %q", lost.Error)
	}
	if !broken.Closed() {
		t.Error("failed session should be closed")
	}
	if err := h.clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if testutil.ToFloat64(metrics.SlowMode) != 0 {
		t.Error("slow mode should end after a lost session")
	}
	if testutil.ToFloat64(metrics.ConsecutiveFailures) != 1 {
		t.Errorf("consecutive failures = %v, want 1", testutil.ToFloat64(metrics.ConsecutiveFailures))
	}
	h.clock.Advance(time.Second)

	if s := h.pub.next(t); !s.Connected || s.Error != "" {
		t.Errorf("expected reconnection after fast delay, got %+v", s)
	}
	if dialer.Attempts() != 5 {
		t.Errorf("dial attempts = %d, want 5", dialer.Attempts())
	}

	h.cancel()
	if err := h.wait(t); err != nil {
		t.Fatal(err)
	}
}

func TestRunCancelDuringBackoff(t *testing.T) {
	dialer := obstest.NewFakeDialer(refuse)
	h := startDaemon(t, Config{}, dialer, nil, nil)

	h.pub.next(t)
	h.pub.next(t)

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	if err := h.clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatal(err)
	}
	h.cancel()

	if err := h.wait(t); err != nil {
		t.Fatalf("expected nil on cancellation, got %v", err)
	}
	final := h.pub.next(t)
	if final.Connected || final.Error != "" {
		t.Errorf("final state should be disconnected without error, got %+v", final)
	}
	if dialer.Attempts() != 1 {
		t.Errorf("backoff should not complete, got %d dials", dialer.Attempts())
	}
}

func TestRunSurvivesPublishFailures(t *testing.T) {
	session := obstest.NewFakeSession()
	dialer := obstest.NewFakeDialer(func(context.Context, int) (obs.Session, error) {
		return session, nil
	})

	pub := newRecordingPublisher()
	pub.err = errors.New("disk full")
	h := startDaemon(t, Config{}, dialer, pub, nil)

	h.pub.next(t)
	h.pub.next(t)
	for i := 0; i < 3; i++ {
		h.advance(t, DefaultStatsInterval)
		h.pub.next(t)
	}

	if dialer.Attempts() != 1 {
		t.Errorf("publish failures must not end the session, got %d dials", dialer.Attempts())
	}
	if snap, ok := h.daemon.Snapshot(); !ok || !snap.Connected {
		t.Errorf("Snapshot should still track state, got %+v", snap)
	}

	h.cancel()
	if err := h.wait(t); err != nil {
		t.Fatal(err)
	}
}
