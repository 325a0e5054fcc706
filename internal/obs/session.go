// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package obs

import "context"

// Session is the set of OBS operations the daemon and the command gateway
// rely on. *Client implements it; tests substitute fakes.
type Session interface {
	GetRecordStatus(ctx context.Context) (*RecordStatus, error)
	GetStreamStatus(ctx context.Context) (*StreamStatus, error)
	GetCurrentProgramScene(ctx context.Context) (string, error)
	GetSceneList(ctx context.Context) (*SceneList, error)
	GetStats(ctx context.Context) (*Stats, error)

	StartRecord(ctx context.Context) error
	StopRecord(ctx context.Context) (string, error)
	ToggleRecordPause(ctx context.Context) (bool, error)
	StartStream(ctx context.Context) error
	StopStream(ctx context.Context) error
	SetCurrentProgramScene(ctx context.Context, name string) error

	Close() error
}

// Dialer acquires sessions.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// WebSocketDialer acquires obs-websocket sessions with fixed options.
type WebSocketDialer struct {
	opts Options
}

// NewDialer returns a Dialer for the given connection options.
func NewDialer(opts Options) *WebSocketDialer {
	return &WebSocketDialer{opts: opts.withDefaults()}
}

// Dial connects and identifies. Errors are *ConnectionError.
func (d *WebSocketDialer) Dial(ctx context.Context) (Session, error) {
	c, err := Connect(ctx, d.opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Host returns the configured host.
func (d *WebSocketDialer) Host() string { return d.opts.Host }

// Port returns the configured port.
func (d *WebSocketDialer) Port() int { return d.opts.Port }

var _ Session = (*Client)(nil)
