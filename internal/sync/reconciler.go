// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package sync

import (
	"context"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/obsbridge/internal/logging"
	"github.com/tomtom215/obsbridge/internal/metrics"
	"github.com/tomtom215/obsbridge/internal/models"
	"github.com/tomtom215/obsbridge/internal/obs"
	"github.com/tomtom215/obsbridge/internal/tracker"
)

// Reconciliation dimensions, used as metric labels and breaker names.
const (
	DimRecording = "recording"
	DimStreaming = "streaming"
	DimScene     = "scene"
	DimScenes    = "scenes"
	DimStats     = "stats"
)

// Config controls a Reconciler.
type Config struct {
	// ShowStats enables the GetStats fetch.
	ShowStats bool

	// RequestTimeout bounds each request. Zero leaves it to the session.
	RequestTimeout time.Duration

	// BreakerFailures is the number of consecutive request errors after
	// which an optional dimension (scenes, stats) is skipped. Default: 5
	BreakerFailures uint32

	// BreakerTimeout is how long a tripped dimension is skipped. Default: 30s
	BreakerTimeout time.Duration

	// LogInterval throttles repeated request-error logs per dimension. Default: 1m
	LogInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
	if c.BreakerTimeout <= 0 {
		c.BreakerTimeout = 30 * time.Second
	}
	if c.LogInterval <= 0 {
		c.LogInterval = time.Minute
	}
	return c
}

// Reconciler pulls OBS state into a StateTracker.
//
// Each dimension is fetched independently: a request error in one leaves
// the previous value of that dimension in place and does not stop the
// others. Only a transport error is returned, since it means the session
// is gone.
type Reconciler struct {
	cfg Config

	scenesBreaker *gobreaker.CircuitBreaker[*obs.SceneList]
	statsBreaker  *gobreaker.CircuitBreaker[*obs.Stats]

	logLimits map[string]*rate.Sometimes
}

// NewReconciler returns a Reconciler for cfg.
func NewReconciler(cfg Config) *Reconciler {
	cfg = cfg.withDefaults()

	limits := make(map[string]*rate.Sometimes)
	for _, dim := range []string{DimRecording, DimStreaming, DimScene, DimScenes, DimStats} {
		limits[dim] = &rate.Sometimes{First: 1, Interval: cfg.LogInterval}
	}

	return &Reconciler{
		cfg:           cfg,
		scenesBreaker: newBreaker[*obs.SceneList]("obs-"+DimScenes, cfg.BreakerFailures, cfg.BreakerTimeout),
		statsBreaker:  newBreaker[*obs.Stats]("obs-"+DimStats, cfg.BreakerFailures, cfg.BreakerTimeout),
		logLimits:     limits,
	}
}

// Sync performs one full reconciliation of session into t.
//
// Requests run detached from ctx cancellation so that shutdown never
// abandons a request halfway; each is bounded by the request timeout.
func (r *Reconciler) Sync(ctx context.Context, session obs.Session, t *tracker.StateTracker) error {
	start := time.Now()
	defer func() { metrics.ReconcileDuration.Observe(time.Since(start).Seconds()) }()

	reqCtx := context.WithoutCancel(ctx)

	rec, err := request(reqCtx, r.cfg.RequestTimeout, session.GetRecordStatus)
	if err := r.check(ctx, DimRecording, err); err != nil {
		return err
	}
	if rec != nil {
		t.ApplyRecording(rec.OutputActive, rec.OutputPaused, millis(rec.OutputDuration))
	}

	stream, err := request(reqCtx, r.cfg.RequestTimeout, session.GetStreamStatus)
	if err := r.check(ctx, DimStreaming, err); err != nil {
		return err
	}
	if stream != nil {
		t.ApplyStreaming(stream.OutputActive, stream.OutputReconnecting, stream.OutputBytes, millis(stream.OutputDuration))
	}

	scene, err := request(reqCtx, r.cfg.RequestTimeout, session.GetCurrentProgramScene)
	if err := r.check(ctx, DimScene, err); err != nil {
		return err
	}
	if err == nil {
		t.SetCurrentScene(scene)
	}

	list, err := execute(r.scenesBreaker, func() (*obs.SceneList, error) {
		return request(reqCtx, r.cfg.RequestTimeout, session.GetSceneList)
	})
	if err := r.check(ctx, DimScenes, err); err != nil {
		return err
	}
	if list != nil {
		t.SetScenes(list.Names())
	}

	if !r.cfg.ShowStats {
		t.ClearStats()
		return nil
	}

	stats, err := execute(r.statsBreaker, func() (*obs.Stats, error) {
		return request(reqCtx, r.cfg.RequestTimeout, session.GetStats)
	})
	if err := r.check(ctx, DimStats, err); err != nil {
		return err
	}
	if stats != nil {
		t.SetStats(convertStats(stats))
	}
	return nil
}

// check returns err if it is a transport error and absorbs anything else.
func (r *Reconciler) check(ctx context.Context, dimension string, err error) error {
	if err == nil {
		return nil
	}
	if obs.IsTransport(err) {
		return err
	}
	if isRejected(err) {
		logging.Ctx(ctx).Debug().Str("dimension", dimension).Msg("Skipping fetch while circuit is open")
		return nil
	}

	metrics.ReconcileRequestErrors.WithLabelValues(dimension).Inc()
	r.logLimits[dimension].Do(func() {
		logging.Ctx(ctx).Warn().Err(err).Str("dimension", dimension).Msg("OBS request failed, keeping previous value")
	})
	return nil
}

func request[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func millis(ms float64) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}

func convertStats(s *obs.Stats) models.Stats {
	disk := s.AvailableDiskSpace
	return models.Stats{
		CPUUsage:            s.CPUUsage,
		MemoryMB:            s.MemoryUsage,
		AvailableDiskMB:     &disk,
		ActiveFPS:           s.ActiveFPS,
		AverageFrameTimeMS:  s.AverageFrameRenderTime,
		RenderMissedFrames:  s.RenderSkippedFrames,
		RenderTotalFrames:   s.RenderTotalFrames,
		OutputSkippedFrames: s.OutputSkippedFrames,
		OutputTotalFrames:   s.OutputTotalFrames,
	}
}
