// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

// Package api serves the optional telemetry HTTP surface using the Chi
// router.
//
// Routes:
//
//	GET /metrics        Prometheus exposition
//	GET /healthz        200 while the daemon loop runs, 503 otherwise
//	GET /api/v1/state   last published state snapshot
//
// All routes share the same middleware stack: request IDs bound to the
// logging context, panic recovery, per-IP rate limiting (go-chi/httprate)
// and CORS (go-chi/cors). The surface is read-only; OBS is controlled
// through the CLI commands, never over HTTP.
package api
