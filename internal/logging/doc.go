// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

// Package logging provides centralized zerolog-based logging for OBSBridge.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "console",
//	})
//
//	logging.Info().Str("host", host).Int("port", port).Msg("Connected to OBS")
//	logging.Err(err).Msg("Failed to publish state")
//
// Every connection attempt made by the daemon carries a short session ID:
//
//	ctx = logging.ContextWithNewSessionID(ctx)
//	logging.Ctx(ctx).Warn().Err(err).Msg("OBS connection lost")
//
// # Configuration
//
// Environment Variables (read by the config package):
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: console, json (default: console)
//   - LOG_CALLER: true/false (default: false)
//
// # Suture Integration
//
// The supervisor tree logs through sutureslog, which requires an
// *slog.Logger. NewSlogLogger returns one backed by the zerolog logger.
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
