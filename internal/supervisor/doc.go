// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

/*
Package supervisor runs the daemon's long-lived services under suture v4.

# Overview

	RootSupervisor ("obsbridge")
	├── BridgeSupervisor ("bridge-layer")
	│   └── DaemonService
	└── TelemetrySupervisor ("telemetry-layer")
	    └── HTTPServerService (if metrics.enabled)

The daemon loop already handles OBS outages itself, so suture only restarts
it after an unexpected error. A clean return is final (ErrDoNotRestart) and
a fatal daemon error stops the whole tree.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	daemonSvc := services.NewDaemonService(d)
	tree.AddBridgeService(daemonSvc)
	if cfg.Metrics.Enabled {
	    tree.AddTelemetryService(services.NewHTTPServerService(server, 5*time.Second))
	}

	err = tree.Serve(ctx)

# Logging

Supervisor events (service start, failure, backoff) are emitted through
sutureslog, backed by the zerolog logger via logging.NewSlogLogger.
*/
package supervisor
