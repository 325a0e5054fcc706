// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

// Command obsbridge keeps a JSON snapshot of OBS Studio's state on disk and
// controls OBS from the command line.
//
// # Daemon
//
//	obsbridge daemon
//	obsbridge --host 192.168.1.100 --password secret daemon --no-stats
//
// The daemon holds an obs-websocket session, reconciles recording,
// streaming, scene and stats state every stats interval and writes it
// atomically to $XDG_STATE_HOME/fern/obs-state.json (mode 0600). While OBS
// is unreachable it retries every 5s, slowing to once a minute after ten
// consecutive failures. With --max-reconnects N it exits with status 1
// after N+1 consecutive failures.
//
// # Commands
//
//	obsbridge start-recording | stop-recording | toggle-pause
//	obsbridge start-streaming | stop-streaming
//	obsbridge scene "Gaming"
//	obsbridge status [--json] [--file]
//	obsbridge watch [--json]
//	obsbridge paths
//
// Each control command opens its own short-lived session. status queries
// OBS directly unless --file is given, in which case it prints the
// daemon's last published snapshot.
//
// # Configuration
//
// Settings are layered: built-in defaults, then the YAML file
// (--config, OBSBRIDGE_CONFIG, ./obsbridge.yaml or
// $XDG_CONFIG_HOME/obsbridge/config.yaml), then environment variables
// (OBS_HOST, OBS_PORT, OBS_PASSWORD, LOG_LEVEL, ...), then flags.
//
// # Signals
//
// SIGINT and SIGTERM stop the daemon; the final snapshot is published with
// connected=false before exit.
package main
