// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/obsbridge/internal/config"
	"github.com/tomtom215/obsbridge/internal/gateway"
	"github.com/tomtom215/obsbridge/internal/models"
	"github.com/tomtom215/obsbridge/internal/obs"
	"github.com/tomtom215/obsbridge/internal/statefile"
)

type StartRecordingCmd struct{}

func (c *StartRecordingCmd) Run(g *Globals) error { return runCommand(g, gateway.StartRecording, "") }

type StopRecordingCmd struct{}

func (c *StopRecordingCmd) Run(g *Globals) error { return runCommand(g, gateway.StopRecording, "") }

type TogglePauseCmd struct{}

func (c *TogglePauseCmd) Run(g *Globals) error { return runCommand(g, gateway.TogglePause, "") }

type StartStreamingCmd struct{}

func (c *StartStreamingCmd) Run(g *Globals) error { return runCommand(g, gateway.StartStreaming, "") }

type StopStreamingCmd struct{}

func (c *StopStreamingCmd) Run(g *Globals) error { return runCommand(g, gateway.StopStreaming, "") }

// SceneCmd implements the 'scene' command.
type SceneCmd struct {
	Name string `arg:"" help:"Name of the scene to switch to."`
}

func (c *SceneCmd) Run(g *Globals) error { return runCommand(g, gateway.SetScene, c.Name) }

// StatusCmd implements the 'status' command.
type StatusCmd struct {
	JSON bool `name:"json" help:"Output as JSON."`
	File bool `help:"Read the daemon's state file instead of querying OBS."`
}

func (c *StatusCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	var state models.ObsState
	if c.File {
		state, err = statefile.Read(cfg.State.StatePath())
	} else {
		ctx, stop := signalContext()
		defer stop()
		state, err = newGateway(cfg).Status(ctx)
	}
	if err != nil {
		return err
	}

	if c.JSON {
		return printJSON(g.out(), &state, true)
	}
	printStatus(g.out(), &state)
	return nil
}

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	JSON bool `name:"json" help:"Print each snapshot as a JSON line."`
}

func (c *WatchCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	w, err := statefile.NewWatcher(cfg.State.StatePath(), 0)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()

	for state := range w.Updates() {
		if c.JSON {
			if err := printJSON(g.out(), &state, false); err != nil {
				return err
			}
			continue
		}
		printSummary(g.out(), &state)
	}

	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// PathsCmd implements the 'paths' command.
type PathsCmd struct{}

func (c *PathsCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	out := g.out()
	fmt.Fprintf(out, "State file: %s\n", cfg.State.StatePath())
	fmt.Fprintln(out, "Config search paths:")
	if g.Config != "" {
		fmt.Fprintf(out, "  %s\n", g.Config)
	}
	for _, p := range config.SearchPaths() {
		fmt.Fprintf(out, "  %s\n", p)
	}
	return nil
}

func runCommand(g *Globals, cmd gateway.Command, arg string) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	res, err := newGateway(cfg).Execute(ctx, cmd, arg)
	if err != nil {
		return err
	}
	fmt.Fprintln(g.out(), res.Message)
	return nil
}

func newGateway(cfg *config.Config) *gateway.Gateway {
	return gateway.New(obs.NewDialer(obs.Options{
		Host:           cfg.OBS.Host,
		Port:           cfg.OBS.Port,
		Password:       cfg.OBS.Password,
		RequestTimeout: cfg.OBS.RequestTimeout,
	}), gateway.WithStats(cfg.OBS.ShowStats))
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
