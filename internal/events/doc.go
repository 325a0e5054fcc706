// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

// Package events mirrors published state snapshots to NATS.
//
// The mirror is optional and strictly secondary to the state file: the
// daemon logs and counts mirror failures but never lets them affect the
// connection loop. Each snapshot is sent as the same compact JSON
// document written to disk, on subject "<prefix>.<service>"
// (default "obsbridge.state.obs"), with headers carrying the service name
// and the connected flag so subscribers can filter without decoding.
//
// Core NATS publish is fire-and-forget. A subscriber that joins late
// receives the next snapshot, at most one stats interval later.
package events
