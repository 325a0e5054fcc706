// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/obsbridge/internal/logging"
	"github.com/tomtom215/obsbridge/internal/metrics"
	"github.com/tomtom215/obsbridge/internal/models"
	"github.com/tomtom215/obsbridge/internal/obs"
	"github.com/tomtom215/obsbridge/internal/tracker"
)

// DefaultStatsInterval is the reconciliation period.
const DefaultStatsInterval = time.Second

// Syncer reconciles a session into the tracker. *sync.Reconciler
// implements it.
type Syncer interface {
	Sync(ctx context.Context, session obs.Session, t *tracker.StateTracker) error
}

// Publisher persists a snapshot. *statefile.Writer implements it.
type Publisher interface {
	Publish(state *models.ObsState) error
}

// Mirror receives a copy of every published snapshot. Failures are logged
// and never affect the daemon.
type Mirror interface {
	Publish(ctx context.Context, state *models.ObsState) error
}

// Config holds the daemon settings.
type Config struct {
	// Host and Port are used for logging only; the dialer owns the address.
	Host string
	Port int

	// StatsInterval is the tick period while connected. Default: 1s
	StatsInterval time.Duration

	Retry RetryPolicy
}

// Options collects the daemon's collaborators.
type Options struct {
	Dialer    obs.Dialer
	Syncer    Syncer
	Publisher Publisher

	// Mirror is optional.
	Mirror Mirror

	// Clock defaults to the real clock.
	Clock clockwork.Clock
}

// Daemon keeps a local state file in step with a remote OBS instance.
//
// Run is the only writer of the tracked state. Snapshot and Running may be
// called from other goroutines.
type Daemon struct {
	cfg       Config
	dialer    obs.Dialer
	syncer    Syncer
	publisher Publisher
	mirror    Mirror
	clock     clockwork.Clock

	tracker       *tracker.StateTracker
	retry         RetryState
	connectedOnce bool

	mu        sync.RWMutex
	last      models.ObsState
	published bool
	running   bool
}

// New creates a daemon in the disconnected state.
func New(cfg Config, opts Options) (*Daemon, error) {
	if opts.Dialer == nil {
		return nil, errors.New("daemon: dialer is required")
	}
	if opts.Syncer == nil {
		return nil, errors.New("daemon: syncer is required")
	}
	if opts.Publisher == nil {
		return nil, errors.New("daemon: publisher is required")
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = DefaultStatsInterval
	}
	cfg.Retry = cfg.Retry.withDefaults()

	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Daemon{
		cfg:       cfg,
		dialer:    opts.Dialer,
		syncer:    opts.Syncer,
		publisher: opts.Publisher,
		mirror:    opts.Mirror,
		clock:     clock,
		tracker:   tracker.New(clock),
	}, nil
}

// Run blocks until ctx is canceled or the retry budget is exhausted.
//
// It returns nil on cancellation, after publishing a final disconnected
// snapshot, and a *FatalError when MaxAttempts is exceeded.
func (d *Daemon) Run(ctx context.Context) error {
	d.setRunning(true)
	defer d.setRunning(false)

	logging.Info().
		Str("host", d.cfg.Host).
		Int("port", d.cfg.Port).
		Dur("stats_interval", d.cfg.StatsInterval).
		Uint32("max_reconnect_attempts", d.cfg.Retry.MaxAttempts).
		Msg("Starting OBS daemon")

	d.publish(ctx)

	for {
		attemptCtx := logging.ContextWithNewSessionID(ctx)

		err := d.runConnected(attemptCtx)
		if err == nil || ctx.Err() != nil {
			return d.shutdown(ctx)
		}

		wasConnected := d.tracker.Connected()
		decision, fatal := d.retry.Failure(d.cfg.Retry, wasConnected, err)

		d.tracker.SetDisconnected(disconnectReason(err, decision, fatal))
		metrics.SetConnected(false)

		log := logging.Ctx(attemptCtx)
		if wasConnected {
			log.Warn().Err(err).Msg("OBS connection lost")
		} else {
			log.Warn().Err(err).Uint32("attempt", decision.Attempt).Msg("OBS connection failed")
		}
		d.publish(attemptCtx)

		if fatal != nil {
			log.Error().
				Uint32("attempts", decision.Attempt).
				Uint32("max_attempts", d.cfg.Retry.MaxAttempts).
				Msg("Max reconnection attempts exceeded")
			return fatal
		}

		if decision.ResumedFast {
			log.Info().Msg("Connection lost, resuming fast retry")
		}
		if decision.EnteredSlowMode {
			log.Warn().Dur("interval", decision.Delay).Msg("OBS appears to be unavailable, switching to slow retry")
		}
		metrics.UpdateRetryState(d.retry.ConsecutiveFailures, d.retry.SlowMode, decision.Delay)

		log.Info().Dur("delay", decision.Delay).Uint32("attempt", decision.Attempt).Msg("Reconnecting")
		select {
		case <-ctx.Done():
			return d.shutdown(ctx)
		case <-d.clock.After(decision.Delay):
		}
	}
}

// runConnected connects and reconciles until the session fails or ctx ends.
// A nil return means ctx was canceled.
func (d *Daemon) runConnected(ctx context.Context) error {
	log := logging.Ctx(ctx)

	session, err := d.dialer.Dial(ctx)
	metrics.RecordConnectionAttempt(err)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("Error closing OBS session")
		}
	}()

	d.tracker.SetConnected()
	metrics.SetConnected(true)
	if !d.connectedOnce {
		d.connectedOnce = true
		d.retry.Reset()
		metrics.ResetRetryState()
	}
	log.Info().Str("host", d.cfg.Host).Int("port", d.cfg.Port).Msg("Connected to OBS")

	if err := d.syncer.Sync(ctx, session, d.tracker); err != nil {
		return err
	}
	d.publish(ctx)

	ticker := d.clock.NewTicker(d.cfg.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Received shutdown signal")
			return nil
		case <-ticker.Chan():
			if err := d.syncer.Sync(ctx, session, d.tracker); err != nil {
				return err
			}
			d.publish(ctx)
		}
	}
}

// disconnectReason is the published error. In slow mode it carries the
// retry interval so readers of the state file can tell OBS is considered
// unavailable.
func disconnectReason(err error, decision RetryDecision, fatal error) string {
	if fatal == nil && decision.SlowMode {
		return fmt.Sprintf("%s; retrying every %ds", err, int(decision.Delay/time.Second))
	}
	return err.Error()
}

func (d *Daemon) shutdown(ctx context.Context) error {
	logging.Info().Msg("Shutting down OBS daemon")
	d.tracker.SetDisconnected("")
	metrics.SetConnected(false)
	d.publish(context.WithoutCancel(ctx))
	return nil
}

// publish refreshes derived fields and writes the snapshot. Failures are
// logged and retried on the next transition or tick.
func (d *Daemon) publish(ctx context.Context) {
	snap := d.tracker.UpdateElapsed()

	if err := d.publisher.Publish(&snap); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("Failed to publish state")
	}

	d.mu.Lock()
	d.last = snap
	d.published = true
	d.mu.Unlock()

	if d.mirror != nil {
		if err := d.mirror.Publish(context.WithoutCancel(ctx), &snap); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("Failed to mirror state")
		}
	}
}

// Snapshot returns a copy of the last published state. ok is false before
// the first publish.
func (d *Daemon) Snapshot() (state models.ObsState, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.published {
		return models.ObsState{}, false
	}
	return d.last.Clone(), true
}

// Running reports whether Run is executing.
func (d *Daemon) Running() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

func (d *Daemon) setRunning(running bool) {
	d.mu.Lock()
	d.running = running
	d.mu.Unlock()
}
