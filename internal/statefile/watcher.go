// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package statefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tomtom215/obsbridge/internal/logging"
	"github.com/tomtom215/obsbridge/internal/models"
)

// DefaultDebounce coalesces the create/write/rename burst of one publish.
const DefaultDebounce = 100 * time.Millisecond

// Watcher follows a state file and emits each newly published snapshot.
//
// The parent directory is watched rather than the file itself, because
// every publish replaces the file's inode.
type Watcher struct {
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	updates  chan models.ObsState
}

// NewWatcher creates a watcher for the state file at path.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve state path: %w", err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Watcher{
		path:     abs,
		debounce: debounce,
		fsw:      fsw,
		updates:  make(chan models.ObsState, 1),
	}, nil
}

// Updates returns the channel of decoded snapshots. It is closed when Run returns.
func (w *Watcher) Updates() <-chan models.ObsState { return w.updates }

// Run watches until ctx is done. The current file content, if any, is
// emitted first.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.updates)
	defer func() { _ = w.fsw.Close() }()

	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch state directory %s: %w", dir, err)
	}

	if !w.emit(ctx) {
		return nil
	}

	name := filepath.Base(w.path)
	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logging.Warn().Err(err).Str("path", w.path).Msg("State watcher error")

		case <-timerC:
			timerC = nil
			if !w.emit(ctx) {
				return nil
			}
		}
	}
}

// emit reads and forwards the current snapshot. It returns false when ctx
// ended while waiting for the consumer.
func (w *Watcher) emit(ctx context.Context) bool {
	state, err := Read(w.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.Debug().Err(err).Str("path", w.path).Msg("Skipping unreadable state file")
		}
		return true
	}
	select {
	case w.updates <- state:
		return true
	case <-ctx.Done():
		return false
	}
}
