// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/obsbridge/internal/api"
	"github.com/tomtom215/obsbridge/internal/config"
	"github.com/tomtom215/obsbridge/internal/daemon"
	"github.com/tomtom215/obsbridge/internal/events"
	"github.com/tomtom215/obsbridge/internal/logging"
	"github.com/tomtom215/obsbridge/internal/obs"
	"github.com/tomtom215/obsbridge/internal/statefile"
	"github.com/tomtom215/obsbridge/internal/supervisor"
	"github.com/tomtom215/obsbridge/internal/supervisor/services"
	obssync "github.com/tomtom215/obsbridge/internal/sync"
)

// DaemonCmd implements the 'daemon' command.
type DaemonCmd struct {
	StatsInterval     int     `help:"Reconciliation interval while connected (milliseconds)." placeholder:"MS"`
	ReconnectInterval int     `help:"Delay between reconnect attempts (milliseconds)." placeholder:"MS"`
	MaxReconnects     *uint32 `help:"Give up after this many consecutive failures (0 = unlimited)." placeholder:"N"`
	NoStats           bool    `help:"Disable stats collection."`
	MetricsListen     string  `help:"Serve /metrics, /healthz and /api/v1/state on this address." placeholder:"ADDR"`
}

func (c *DaemonCmd) overrides(cfg *config.Config) {
	if c.StatsInterval > 0 {
		cfg.OBS.StatsIntervalMS = c.StatsInterval
	}
	if c.ReconnectInterval > 0 {
		cfg.OBS.ReconnectIntervalMS = c.ReconnectInterval
	}
	if c.MaxReconnects != nil {
		cfg.OBS.MaxReconnectAttempts = *c.MaxReconnects
	}
	if c.NoStats {
		cfg.OBS.ShowStats = false
	}
	if c.MetricsListen != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Listen = c.MetricsListen
	}
}

func (c *DaemonCmd) Run(g *Globals) error {
	cfg, err := g.load(c.overrides)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runDaemon(ctx, cfg)
}

// runDaemon wires the daemon and its optional telemetry server into a
// supervisor tree and blocks until ctx is done or the daemon gives up.
func runDaemon(ctx context.Context, cfg *config.Config) error {
	statePath := cfg.State.StatePath()
	writer, err := statefile.NewWriter(statePath)
	if err != nil {
		return err
	}

	opts := daemon.Options{
		Dialer: obs.NewDialer(obs.Options{
			Host:           cfg.OBS.Host,
			Port:           cfg.OBS.Port,
			Password:       cfg.OBS.Password,
			RequestTimeout: cfg.OBS.RequestTimeout,
		}),
		Syncer: obssync.NewReconciler(obssync.Config{
			ShowStats:      cfg.OBS.ShowStats,
			RequestTimeout: cfg.OBS.RequestTimeout,
		}),
		Publisher: writer,
	}

	if cfg.NATS.Enabled {
		mirror, err := events.NewNATSMirror(events.MirrorConfig{
			URL:     cfg.NATS.URL,
			Subject: cfg.NATS.Subject(cfg.State.Service),
			Service: cfg.State.Service,
		})
		if err != nil {
			return err
		}
		defer func() { _ = mirror.Close() }()
		opts.Mirror = mirror
		logging.Info().Str("subject", mirror.Subject()).Msg("Mirroring state to NATS")
	}

	d, err := daemon.New(daemon.Config{
		Host:          cfg.OBS.Host,
		Port:          cfg.OBS.Port,
		StatsInterval: cfg.OBS.StatsInterval(),
		Retry: daemon.RetryPolicy{
			ReconnectInterval: cfg.OBS.ReconnectInterval(),
			MaxAttempts:       cfg.OBS.MaxReconnectAttempts,
		},
	}, opts)
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	daemonSvc := services.NewDaemonService(d)
	tree.AddBridgeService(daemonSvc)

	if cfg.Metrics.Enabled {
		server := &http.Server{
			Addr: cfg.Metrics.Listen,
			Handler: api.NewRouter(d, api.MiddlewareConfig{
				CORSAllowedOrigins: cfg.Metrics.CORSOrigins,
				CORSMaxAge:         300,
				RateLimitRequests:  cfg.Metrics.RateLimit,
				RateLimitWindow:    time.Minute,
			}),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
		}
		tree.AddTelemetryService(services.NewHTTPServerService(server, cfg.Metrics.Listen, 5*time.Second))
	}

	logging.Info().
		Str("host", cfg.OBS.Host).
		Int("port", cfg.OBS.Port).
		Str("state_file", statePath).
		Bool("stats", cfg.OBS.ShowStats).
		Msg("Starting OBS bridge daemon")

	treeCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	errCh := tree.ServeBackground(treeCtx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	case <-daemonSvc.Fatal():
		cancel()
	case err := <-errCh:
		logSupervisorError(err)
	}
	cancel()

	for err := range errCh {
		logSupervisorError(err)
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	if err := daemonSvc.Err(); err != nil {
		return err
	}
	logging.Info().Msg("Daemon stopped")
	return nil
}

func logSupervisorError(err error) {
	if err != nil && !errors.Is(err, context.Canceled) {
		logging.Debug().Err(err).Msg("Supervisor tree stopped")
	}
}
