// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

// Package gateway runs one-shot OBS commands outside the daemon loop.
//
// Every call dials its own short-lived session and closes it before
// returning, so commands may run while a daemon holds another connection
// to the same OBS instance.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/obsbridge/internal/logging"
	"github.com/tomtom215/obsbridge/internal/models"
	"github.com/tomtom215/obsbridge/internal/obs"
	obssync "github.com/tomtom215/obsbridge/internal/sync"
	"github.com/tomtom215/obsbridge/internal/tracker"
)

// Command identifies a one-shot operation.
type Command string

// Supported commands.
const (
	StartRecording Command = "start-recording"
	StopRecording  Command = "stop-recording"
	TogglePause    Command = "toggle-pause"
	StartStreaming Command = "start-streaming"
	StopStreaming  Command = "stop-streaming"
	SetScene       Command = "scene"
	Status         Command = "status"
)

// ErrUnknownCommand is returned by Execute for an unsupported Command.
var ErrUnknownCommand = errors.New("unknown command")

// Result is either a short confirmation message or a full state snapshot
// (for Status).
type Result struct {
	Message string
	State   *models.ObsState
}

// Gateway issues commands through a Dialer.
type Gateway struct {
	dialer    obs.Dialer
	showStats bool
	clock     clockwork.Clock
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithStats includes OBS performance stats in Status results.
func WithStats(enabled bool) Option {
	return func(g *Gateway) { g.showStats = enabled }
}

// WithClock sets the clock used to derive elapsed fields in Status.
func WithClock(clock clockwork.Clock) Option {
	return func(g *Gateway) { g.clock = clock }
}

// New returns a Gateway. Stats are included in Status by default.
func New(dialer obs.Dialer, opts ...Option) *Gateway {
	g := &Gateway{dialer: dialer, showStats: true, clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Execute runs cmd. arg is the scene name for SetScene and ignored
// otherwise.
func (g *Gateway) Execute(ctx context.Context, cmd Command, arg string) (Result, error) {
	switch cmd {
	case StartRecording:
		return g.StartRecording(ctx)
	case StopRecording:
		return g.StopRecording(ctx)
	case TogglePause:
		return g.TogglePause(ctx)
	case StartStreaming:
		return g.StartStreaming(ctx)
	case StopStreaming:
		return g.StopStreaming(ctx)
	case SetScene:
		return g.SwitchScene(ctx, arg)
	case Status:
		state, err := g.Status(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{State: &state}, nil
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
}

// StartRecording starts the record output.
func (g *Gateway) StartRecording(ctx context.Context) (Result, error) {
	err := g.withSession(ctx, StartRecording, func(s obs.Session) error {
		return s.StartRecord(ctx)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "Recording started"}, nil
}

// StopRecording stops the record output and reports where it was saved.
func (g *Gateway) StopRecording(ctx context.Context) (Result, error) {
	var path string
	err := g.withSession(ctx, StopRecording, func(s obs.Session) error {
		var err error
		path, err = s.StopRecord(ctx)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "Recording saved to: " + path}, nil
}

// TogglePause pauses or resumes the record output.
func (g *Gateway) TogglePause(ctx context.Context) (Result, error) {
	var paused bool
	err := g.withSession(ctx, TogglePause, func(s obs.Session) error {
		var err error
		paused, err = s.ToggleRecordPause(ctx)
		return err
	})
	if err != nil {
		return Result{}, err
	}
	if paused {
		return Result{Message: "Recording paused"}, nil
	}
	return Result{Message: "Recording resumed"}, nil
}

// StartStreaming starts the stream output.
func (g *Gateway) StartStreaming(ctx context.Context) (Result, error) {
	err := g.withSession(ctx, StartStreaming, func(s obs.Session) error {
		return s.StartStream(ctx)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "Streaming started"}, nil
}

// StopStreaming stops the stream output.
func (g *Gateway) StopStreaming(ctx context.Context) (Result, error) {
	err := g.withSession(ctx, StopStreaming, func(s obs.Session) error {
		return s.StopStream(ctx)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "Streaming stopped"}, nil
}

// SwitchScene makes name the program scene.
func (g *Gateway) SwitchScene(ctx context.Context, name string) (Result, error) {
	if strings.TrimSpace(name) == "" {
		return Result{}, errors.New("scene name is required")
	}
	err := g.withSession(ctx, SetScene, func(s obs.Session) error {
		return s.SetCurrentProgramScene(ctx, name)
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Message: "Scene set to: " + name}, nil
}

// Status reconciles a fresh state model from OBS. Fetches that OBS
// rejects leave their fields at the default; a transport failure is
// returned.
func (g *Gateway) Status(ctx context.Context) (models.ObsState, error) {
	var state models.ObsState
	err := g.withSession(ctx, Status, func(s obs.Session) error {
		t := tracker.New(g.clock)
		t.SetConnected()

		r := obssync.NewReconciler(obssync.Config{ShowStats: g.showStats})
		if err := r.Sync(ctx, s, t); err != nil {
			return err
		}
		state = t.UpdateElapsed()
		return nil
	})
	return state, err
}

func (g *Gateway) withSession(ctx context.Context, cmd Command, fn func(obs.Session) error) error {
	session, err := g.dialer.Dial(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logging.Debug().Err(cerr).Str("command", string(cmd)).Msg("Error closing OBS session")
		}
	}()

	if err := fn(session); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	logging.Debug().Str("command", string(cmd)).Msg("OBS command completed")
	return nil
}
