// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package statefile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/obsbridge/internal/metrics"
	"github.com/tomtom215/obsbridge/internal/models"
)

const (
	// FileMode is the permission of the published state file.
	FileMode os.FileMode = 0o600

	// DirMode is the permission used when creating the state directory.
	DirMode os.FileMode = 0o700

	tmpSuffix = ".tmp"
)

// PublishError reports the step of the atomic write that failed.
type PublishError struct {
	Step string // encode, create, write, chmod, sync, close, rename
	Path string
	Err  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish state %s: %s: %v", e.Path, e.Step, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// Writer publishes state snapshots to a single path.
//
// Each publish writes a sibling temporary file with mode 0600, syncs it and
// renames it over the final path, so readers see either the previous or the
// new complete document and never a world-readable one.
type Writer struct {
	path string
}

// NewWriter returns a Writer for path, creating its parent directory.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), DirMode); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &Writer{path: path}, nil
}

// Path returns the published file path.
func (w *Writer) Path() string { return w.path }

// Publish encodes state compactly and atomically replaces the state file.
func (w *Writer) Publish(state *models.ObsState) error {
	start := time.Now()
	err := w.publish(state)

	step := ""
	var pe *PublishError
	if errors.As(err, &pe) {
		step = pe.Step
	}
	metrics.RecordPublish(time.Since(start), step, err)
	return err
}

func (w *Writer) publish(state *models.ObsState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return &PublishError{Step: "encode", Path: w.path, Err: err}
	}

	tmp := w.path + tmpSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, FileMode)
	if err != nil {
		return &PublishError{Step: "create", Path: w.path, Err: err}
	}

	fail := func(step string, err error) error {
		_ = f.Close()
		_ = os.Remove(tmp)
		return &PublishError{Step: step, Path: w.path, Err: err}
	}

	if _, err := f.Write(data); err != nil {
		return fail("write", err)
	}
	// A pre-existing temp file keeps its old mode through O_TRUNC.
	if err := f.Chmod(FileMode); err != nil {
		return fail("chmod", err)
	}
	if err := f.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return &PublishError{Step: "close", Path: w.path, Err: err}
	}
	if err := os.Rename(tmp, w.path); err != nil {
		_ = os.Remove(tmp)
		return &PublishError{Step: "rename", Path: w.path, Err: err}
	}
	return nil
}

// Read decodes the state file at path.
func Read(path string) (models.ObsState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ObsState{}, err
	}
	var state models.ObsState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.ObsState{}, fmt.Errorf("decode state file %s: %w", path, err)
	}
	return state, nil
}
