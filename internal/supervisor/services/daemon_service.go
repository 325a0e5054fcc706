// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/obsbridge/internal/daemon"
)

// DaemonRunner matches *daemon.Daemon.
type DaemonRunner interface {
	Run(ctx context.Context) error
}

// DaemonService runs the OBS daemon loop under suture.
//
// Return values are translated for the supervisor:
//   - nil (shutdown) becomes suture.ErrDoNotRestart
//   - a *daemon.FatalError terminates the whole tree and is kept for Err
//   - anything else is returned as-is and the daemon is restarted
type DaemonService struct {
	runner DaemonRunner
	name   string

	mu    sync.Mutex
	fatal error
	done  chan struct{}
}

// NewDaemonService wraps runner.
func NewDaemonService(runner DaemonRunner) *DaemonService {
	return &DaemonService{
		runner: runner,
		name:   "obs-daemon",
		done:   make(chan struct{}),
	}
}

// Serve implements suture.Service.
func (s *DaemonService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	if err == nil {
		return suture.ErrDoNotRestart
	}

	var fatal *daemon.FatalError
	if errors.As(err, &fatal) {
		s.mu.Lock()
		if s.fatal == nil {
			s.fatal = err
			close(s.done)
		}
		s.mu.Unlock()
		return fmt.Errorf("%w: %w", suture.ErrTerminateSupervisorTree, err)
	}
	return err
}

// Fatal is closed once the daemon has given up.
func (s *DaemonService) Fatal() <-chan struct{} {
	return s.done
}

// Err returns the fatal error, if any.
func (s *DaemonService) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fatal
}

// String implements fmt.Stringer for suture's logs.
func (s *DaemonService) String() string {
	return s.name
}
