// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

// Package models defines the state document OBSBridge publishes.
//
// ObsState serializes to the snake_case JSON consumed by the desktop
// shell. Optional fields are omitted rather than written as null or "",
// and scenes is always an array.
package models
