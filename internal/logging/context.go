// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type contextKey string

const (
	// sessionIDKey tags every log line of one OBS connection attempt.
	sessionIDKey contextKey = "session_id"

	// requestIDKey is the context key for HTTP request IDs.
	requestIDKey contextKey = "request_id"
)

// GenerateSessionID returns the first 8 characters of a new UUID.
func GenerateSessionID() string {
	return uuid.New().String()[:8]
}

// ContextWithSessionID returns a new context carrying the given session ID.
func ContextWithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey, id)
}

// ContextWithNewSessionID returns a context with a freshly generated session ID.
//
//	ctx = logging.ContextWithNewSessionID(ctx)
func ContextWithNewSessionID(ctx context.Context) context.Context {
	return ContextWithSessionID(ctx, GenerateSessionID())
}

// SessionIDFromContext returns the session ID, or "" when none is set.
func SessionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(sessionIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a new context carrying an HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID, or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with session_id and request_id added when
// present in ctx.
//
//	logging.Ctx(ctx).Info().Msg("Connected to OBS")
func Ctx(ctx context.Context) *zerolog.Logger {
	logCtx := Logger().With()
	if id := SessionIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("session_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		logCtx = logCtx.Str("request_id", id)
	}
	l := logCtx.Logger()
	return &l
}
