// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/obsbridge/internal/models"
)

// StateSource is implemented by *daemon.Daemon.
type StateSource interface {
	Snapshot() (models.ObsState, bool)
	Running() bool
}

// Option configures the router.
type Option func(*routerOptions)

type routerOptions struct {
	gatherer prometheus.Gatherer
}

// WithGatherer serves g on /metrics instead of the default registry.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(o *routerOptions) { o.gatherer = g }
}

// NewRouter returns the telemetry handler.
func NewRouter(source StateSource, cfg MiddlewareConfig, opts ...Option) http.Handler {
	o := routerOptions{gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(&o)
	}

	h := &handler{source: source}
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg))
	r.Use(RateLimit(cfg))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, ErrCodeNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", h.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", h.state)
	})

	return r
}
