// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/obsbridge/internal/daemon"
)

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestDaemonServiceOutcomes(t *testing.T) {
	fatal := &daemon.FatalError{Attempts: 4, Max: 3, Err: errors.New("connection refused")}
	crash := errors.New("unexpected")

	tests := []struct {
		name      string
		runErr    error
		wantIs    []error
		wantFatal bool
	}{
		{name: "clean shutdown", runErr: nil, wantIs: []error{suture.ErrDoNotRestart}},
		{name: "fatal", runErr: fatal, wantIs: []error{suture.ErrTerminateSupervisorTree, fatal}, wantFatal: true},
		{name: "unexpected error", runErr: crash, wantIs: []error{crash}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewDaemonService(runnerFunc(func(context.Context) error { return tt.runErr }))

			err := svc.Serve(context.Background())
			for _, want := range tt.wantIs {
				if !errors.Is(err, want) {
					t.Errorf("expected %v in %v", want, err)
				}
			}

			select {
			case <-svc.Fatal():
				if !tt.wantFatal {
					t.Error("Fatal closed unexpectedly")
				}
				var fe *daemon.FatalError
				if !errors.As(svc.Err(), &fe) || fe.Max != 3 {
					t.Errorf("Err() = %v", svc.Err())
				}
			default:
				if tt.wantFatal {
					t.Error("Fatal should be closed")
				}
				if svc.Err() != nil {
					t.Errorf("Err() = %v, want nil", svc.Err())
				}
			}
		})
	}
}

func TestDaemonServiceUnderSupervisor(t *testing.T) {
	var runs atomic.Int32
	svc := NewDaemonService(runnerFunc(func(ctx context.Context) error {
		runs.Add(1)
		<-ctx.Done()
		return nil
	}))

	sup := suture.New("test-sup", suture.Spec{FailureBackoff: 10 * time.Millisecond, Timeout: time.Second})
	sup.Add(svc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(time.Second)
	for runs.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("daemon was not started")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-errCh

	if runs.Load() != 1 {
		t.Errorf("daemon runs = %d, want 1", runs.Load())
	}
	if svc.String() != "obs-daemon" {
		t.Errorf("String() = %q", svc.String())
	}
}
