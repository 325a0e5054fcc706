// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

/*
Package daemon runs the connection supervisor: the loop that connects to
OBS, reconciles its state on a fixed interval and publishes every change.

# State Machine

	Disconnected -> Connecting -> Connected -> BackoffWait -> Connecting ...

A failed dial or a transport error during reconciliation moves the daemon
to BackoffWait. Request errors for a single field never do; the Syncer
absorbs them.

# Backoff

Failures are retried every ReconnectInterval (default 5s) until
FastThreshold consecutive failures, then every SlowDelay (default 60s).
When a session that had been connected is lost, the counter restarts at 1
and slow mode ends. With MaxAttempts set, exceeding it ends Run with a
*FatalError.

# Shutdown

Canceling the context while dialing, connected or waiting out a backoff
publishes a final disconnected snapshot and returns nil. In-flight OBS
requests are allowed to finish.

# Usage

	d, err := daemon.New(cfg, daemon.Options{
	    Dialer:    obs.NewDialer(obsOpts),
	    Syncer:    sync.NewReconciler(syncCfg),
	    Publisher: writer,
	})
	if err != nil {
	    return err
	}
	return d.Run(ctx)
*/
package daemon
