// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

// Package services adapts OBSBridge components to suture.Service.
//
// DaemonService wraps the daemon's Run loop and maps its outcomes onto
// suture's restart semantics. HTTPServerService wraps the telemetry
// *http.Server with graceful shutdown.
package services
