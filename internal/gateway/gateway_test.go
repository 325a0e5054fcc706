// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/obsbridge/internal/obs"
	"github.com/tomtom215/obsbridge/internal/obs/obstest"
)

func newGateway(session *obstest.FakeSession) (*Gateway, *obstest.FakeDialer) {
	dialer := obstest.NewFakeDialer(func(context.Context, int) (obs.Session, error) {
		return session, nil
	})
	return New(dialer, WithClock(clockwork.NewFakeClock())), dialer
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(*obstest.FakeSession)
		cmd     Command
		arg     string
		want    string
		request string
	}{
		{
			name:    "start recording",
			cmd:     StartRecording,
			want:    "Recording started",
			request: obs.ReqStartRecord,
		},
		{
			name:    "stop recording",
			setup:   func(s *obstest.FakeSession) { s.SetRecording(true, false, 1000) },
			cmd:     StopRecording,
			want:    "Recording saved to: /tmp/recording.mkv",
			request: obs.ReqStopRecord,
		},
		{
			name:    "pause",
			setup:   func(s *obstest.FakeSession) { s.SetRecording(true, false, 1000) },
			cmd:     TogglePause,
			want:    "Recording paused",
			request: obs.ReqToggleRecordPause,
		},
		{
			name:    "resume",
			setup:   func(s *obstest.FakeSession) { s.SetRecording(true, true, 1000) },
			cmd:     TogglePause,
			want:    "Recording resumed",
			request: obs.ReqToggleRecordPause,
		},
		{
			name:    "start streaming",
			cmd:     StartStreaming,
			want:    "Streaming started",
			request: obs.ReqStartStream,
		},
		{
			name:    "stop streaming",
			setup:   func(s *obstest.FakeSession) { s.SetStreaming(true, false, 0) },
			cmd:     StopStreaming,
			want:    "Streaming stopped",
			request: obs.ReqStopStream,
		},
		{
			name:    "scene",
			setup:   func(s *obstest.FakeSession) { s.SetScenes("Main", "Main", "Gaming") },
			cmd:     SetScene,
			arg:     "Gaming",
			want:    "Scene set to: Gaming",
			request: obs.ReqSetCurrentProgramScene,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := obstest.NewFakeSession()
			if tt.setup != nil {
				tt.setup(session)
			}
			g, dialer := newGateway(session)

			res, err := g.Execute(context.Background(), tt.cmd, tt.arg)
			if err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if res.Message != tt.want {
				t.Errorf("message = %q, want %q", res.Message, tt.want)
			}
			if res.State != nil {
				t.Error("commands should not return a state")
			}
			if calls := session.Calls(); len(calls) != 1 || calls[0] != tt.request {
				t.Errorf("expected exactly one %s request, got %v", tt.request, calls)
			}
			if !session.Closed() {
				t.Error("session should be closed")
			}
			if dialer.Attempts() != 1 {
				t.Errorf("expected one dial, got %d", dialer.Attempts())
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	t.Run("request rejected", func(t *testing.T) {
		session := obstest.NewFakeSession()
		g, _ := newGateway(session)

		_, err := g.StopRecording(context.Background())
		if !obs.IsRequestCode(err, obs.CodeOutputNotRunning) {
			t.Fatalf("expected output-not-running error, got %v", err)
		}
		if !session.Closed() {
			t.Error("session should be closed after a failed command")
		}
	})

	t.Run("unknown scene", func(t *testing.T) {
		session := obstest.NewFakeSession()
		session.SetScenes("Main", "Main")
		g, _ := newGateway(session)

		_, err := g.SwitchScene(context.Background(), "Missing")
		if !obs.IsRequestCode(err, obs.CodeResourceNotFound) {
			t.Fatalf("expected resource-not-found error, got %v", err)
		}
	})

	t.Run("empty scene name", func(t *testing.T) {
		session := obstest.NewFakeSession()
		g, dialer := newGateway(session)

		if _, err := g.SwitchScene(context.Background(), "  "); err == nil {
			t.Fatal("expected error")
		}
		if dialer.Attempts() != 0 {
			t.Error("should not dial for an invalid scene name")
		}
	})

	t.Run("connection refused", func(t *testing.T) {
		refused := &obs.ConnectionError{Host: "localhost", Port: 4455, Err: errors.New("connection refused")}
		dialer := obstest.NewFakeDialer(func(context.Context, int) (obs.Session, error) {
			return nil, refused
		})
		g := New(dialer)

		_, err := g.StartStreaming(context.Background())
		var connErr *obs.ConnectionError
		if !errors.As(err, &connErr) {
			t.Fatalf("expected *obs.ConnectionError, got %v", err)
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		g, _ := newGateway(obstest.NewFakeSession())
		if _, err := g.Execute(context.Background(), Command("reboot"), ""); !errors.Is(err, ErrUnknownCommand) {
			t.Fatalf("expected ErrUnknownCommand, got %v", err)
		}
	})
}

func TestStatus(t *testing.T) {
	session := obstest.NewFakeSession()
	session.SetRecording(true, false, 61_500)
	session.SetScenes("Gaming", "Main", "Gaming")
	session.SetStats(obs.Stats{CPUUsage: 12.5, ActiveFPS: 60})

	g, _ := newGateway(session)
	res, err := g.Execute(context.Background(), Status, "")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if res.State == nil {
		t.Fatal("expected a state snapshot")
	}

	s := *res.State
	if !s.Connected {
		t.Error("status snapshot should be connected")
	}
	if !s.Recording.Active || s.Recording.ElapsedSecs != 61 || s.Recording.Timecode != "01:01" {
		t.Errorf("unexpected recording: %+v", s.Recording)
	}
	if s.CurrentScene != "Gaming" || len(s.Scenes) != 2 {
		t.Errorf("unexpected scenes: %q %v", s.CurrentScene, s.Scenes)
	}
	if s.Stats == nil || s.Stats.CPUUsage != 12.5 {
		t.Errorf("unexpected stats: %+v", s.Stats)
	}
	if !session.Closed() {
		t.Error("session should be closed")
	}
}

func TestStatusWithoutStats(t *testing.T) {
	session := obstest.NewFakeSession()
	dialer := obstest.NewFakeDialer(func(context.Context, int) (obs.Session, error) {
		return session, nil
	})
	g := New(dialer, WithStats(false))

	s, err := g.Status(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.Stats != nil {
		t.Error("stats should be omitted")
	}
	if session.CallCount(obs.ReqGetStats) != 0 {
		t.Error("GetStats should not be requested")
	}
}

func TestCommandOverWebSocket(t *testing.T) {
	srv := obstest.NewServer(t, "secret")
	srv.Respond(obs.ReqStopRecord, map[string]any{"outputPath": "/videos/out.mkv"})

	host, port := srv.HostPort()
	g := New(obs.NewDialer(obs.Options{
		Host:           host,
		Port:           port,
		Password:       "secret",
		RequestTimeout: 2 * time.Second,
	}))

	res, err := g.StopRecording(context.Background())
	if err != nil {
		t.Fatalf("StopRecording: %v", err)
	}
	if res.Message != "Recording saved to: /videos/out.mkv" {
		t.Errorf("message = %q", res.Message)
	}
	if reqs := srv.Requests(); len(reqs) != 1 || reqs[0] != obs.ReqStopRecord {
		t.Errorf("unexpected requests: %v", reqs)
	}
}
