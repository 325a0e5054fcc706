// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/tomtom215/obsbridge/internal/config"
	"github.com/tomtom215/obsbridge/internal/logging"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config    string `short:"c" type:"path" help:"Configuration file path." placeholder:"FILE"`
	Host      string `help:"OBS WebSocket host." env:"OBS_HOST"`
	Port      int    `help:"OBS WebSocket port." env:"OBS_PORT"`
	Password  string `help:"OBS WebSocket password." env:"OBS_PASSWORD"`
	LogLevel  string `help:"Log level (trace, debug, info, warn, error)."`
	LogFormat string `help:"Log format (console, json)."`

	Version kong.VersionFlag `help:"Show version and exit."`

	stdout io.Writer
}

// CLI is the command tree.
type CLI struct {
	Globals

	Daemon         DaemonCmd         `cmd:"" help:"Run the OBS bridge daemon."`
	StartRecording StartRecordingCmd `cmd:"" aliases:"rec" help:"Start recording."`
	StopRecording  StopRecordingCmd  `cmd:"" aliases:"stop-rec" help:"Stop recording."`
	TogglePause    TogglePauseCmd    `cmd:"" aliases:"pause" help:"Pause or resume recording."`
	StartStreaming StartStreamingCmd `cmd:"" aliases:"stream" help:"Start streaming."`
	StopStreaming  StopStreamingCmd  `cmd:"" aliases:"stop-stream" help:"Stop streaming."`
	Scene          SceneCmd          `cmd:"" help:"Switch the program scene."`
	Status         StatusCmd         `cmd:"" help:"Show the current OBS status."`
	Watch          WatchCmd          `cmd:"" help:"Follow the published state file."`
	Paths          PathsCmd          `cmd:"" help:"Print the state and config file locations."`
}

// out returns where command output goes.
func (g *Globals) out() io.Writer {
	if g.stdout == nil {
		return os.Stdout
	}
	return g.stdout
}

// load resolves the configuration, applies the global flags and any
// command-specific overrides, validates the result and configures logging.
func (g *Globals) load(overrides ...func(*config.Config)) (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}

	g.apply(cfg)
	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	return cfg, nil
}

func (g *Globals) apply(cfg *config.Config) {
	if g.Host != "" {
		cfg.OBS.Host = g.Host
	}
	if g.Port != 0 {
		cfg.OBS.Port = g.Port
	}
	if g.Password != "" {
		cfg.OBS.Password = g.Password
	}
	if g.LogLevel != "" {
		cfg.Logging.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Logging.Format = g.LogFormat
	}
}
