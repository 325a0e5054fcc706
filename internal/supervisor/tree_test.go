// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// stubService runs until canceled, or returns err immediately when set.
type stubService struct {
	name   string
	err    error
	starts atomic.Int32
}

func (s *stubService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	if s.err != nil {
		return s.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string { return s.name }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSupervisorTreeDefaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor should not be nil")
	}

	want := DefaultTreeConfig()
	if tree.config != want {
		t.Errorf("config = %+v, want %+v", tree.config, want)
	}
}

func TestTreeRunsBothLayers(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	bridge := &stubService{name: "bridge"}
	telemetry := &stubService{name: "telemetry"}
	tree.AddBridgeService(bridge)
	tree.AddTelemetryService(telemetry)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for bridge.starts.Load() == 0 || telemetry.starts.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("services were not started")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancellation")
	}
}

func TestDoNotRestartIsFinal(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	svc := &stubService{name: "once", err: suture.ErrDoNotRestart}
	tree.AddBridgeService(svc)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	_ = tree.Serve(ctx)

	if got := svc.starts.Load(); got != 1 {
		t.Errorf("expected exactly one start, got %d", got)
	}
}

func TestTerminateStopsTree(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	tree.AddBridgeService(&stubService{name: "fatal", err: suture.ErrTerminateSupervisorTree})
	tree.AddTelemetryService(&stubService{name: "telemetry"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := tree.ServeBackground(ctx)
	select {
	case err := <-errCh:
		if errors.Is(err, context.DeadlineExceeded) {
			t.Error("tree should stop before the deadline")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not terminate")
	}
}
