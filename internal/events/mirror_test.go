// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/obsbridge/internal/metrics"
	"github.com/tomtom215/obsbridge/internal/models"
)

// startNATS runs an in-process server on a random port.
func startNATS(t *testing.T) string {
	t.Helper()

	ns, err := server.NewServer(&server.Options{
		Host:   "127.0.0.1",
		Port:   server.RANDOM_PORT,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		t.Fatalf("create NATS server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(func() {
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return ns.ClientURL()
}

func subscribe(t *testing.T, url, subject string) *nats.Subscription {
	t.Helper()
	nc, err := nats.Connect(url)
	if err != nil {
		t.Fatalf("subscriber connect: %v", err)
	}
	t.Cleanup(nc.Close)

	sub, err := nc.SubscribeSync(subject)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := nc.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	return sub
}

func TestNewNATSMirrorRequiresSubject(t *testing.T) {
	if _, err := NewNATSMirror(MirrorConfig{URL: nats.DefaultURL}); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestMirrorPublish(t *testing.T) {
	url := startNATS(t)
	sub := subscribe(t, url, "obsbridge.state.obs")

	mirror, err := NewNATSMirror(MirrorConfig{URL: url, Subject: "obsbridge.state.obs", Service: "obs"})
	if err != nil {
		t.Fatalf("NewNATSMirror: %v", err)
	}
	defer mirror.Close()

	state := models.NewObsState()
	state.SetConnected()
	state.CurrentScene = "Main"
	state.Scenes = []string{"Main"}
	state.Streaming = models.StreamingState{Active: true, ElapsedSecs: 3600, Timecode: "01:00:00"}

	before := testutil.ToFloat64(metrics.MirrorPublishes.WithLabelValues("success"))
	if err := mirror.Publish(context.Background(), &state); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msg, err := sub.NextMsg(5 * time.Second)
	if err != nil {
		t.Fatalf("NextMsg: %v", err)
	}

	if got := msg.Header.Get(HeaderService); got != "obs" {
		t.Errorf("%s = %q", HeaderService, got)
	}
	if got := msg.Header.Get(HeaderConnected); got != "true" {
		t.Errorf("%s = %q", HeaderConnected, got)
	}

	var got models.ObsState
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Connected || got.Streaming.Timecode != "01:00:00" || got.CurrentScene != "Main" {
		t.Errorf("unexpected mirrored state %+v", got)
	}

	if after := testutil.ToFloat64(metrics.MirrorPublishes.WithLabelValues("success")); after != before+1 {
		t.Errorf("success counter = %v, want %v", after, before+1)
	}
}

func TestMirrorPublishFailures(t *testing.T) {
	url := startNATS(t)

	mirror, err := NewNATSMirror(MirrorConfig{URL: url, Subject: "obsbridge.state.obs", Service: "obs"})
	if err != nil {
		t.Fatalf("NewNATSMirror: %v", err)
	}
	state := models.NewObsState()

	before := testutil.ToFloat64(metrics.MirrorPublishes.WithLabelValues("failure"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := mirror.Publish(ctx, &state); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled publish: got %v", err)
	}

	if err := mirror.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := mirror.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if err := mirror.Publish(context.Background(), &state); !errors.Is(err, ErrMirrorClosed) {
		t.Errorf("publish after close: got %v", err)
	}

	if after := testutil.ToFloat64(metrics.MirrorPublishes.WithLabelValues("failure")); after != before+2 {
		t.Errorf("failure counter = %v, want %v", after, before+2)
	}
}
