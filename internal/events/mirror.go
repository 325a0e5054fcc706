// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/tomtom215/obsbridge/internal/logging"
	"github.com/tomtom215/obsbridge/internal/metrics"
	"github.com/tomtom215/obsbridge/internal/models"
)

// Header names set on every mirrored snapshot.
const (
	HeaderService   = "Obsbridge-Service"
	HeaderConnected = "Obsbridge-Connected"
)

// ErrMirrorClosed is returned by Publish after Close.
var ErrMirrorClosed = errors.New("state mirror closed")

// MirrorConfig configures the NATS connection.
type MirrorConfig struct {
	URL     string
	Subject string
	Service string
}

// NATSMirror publishes snapshots to a NATS subject.
type NATSMirror struct {
	nc      *nats.Conn
	subject string
	service string

	mu     sync.RWMutex
	closed bool
}

// NewNATSMirror connects to cfg.URL. The connection retries in the
// background when the server is unreachable at startup, so the daemon can
// come up before NATS does; publishes are buffered by the client meanwhile.
func NewNATSMirror(cfg MirrorConfig) (*NATSMirror, error) {
	if cfg.Subject == "" {
		return nil, errors.New("nats mirror: subject is required")
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name("obsbridge-"+cfg.Service),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS mirror disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logging.Info().Str("url", c.ConnectedUrlRedacted()).Msg("NATS mirror reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &NATSMirror{nc: nc, subject: cfg.Subject, service: cfg.Service}, nil
}

// Subject returns the subject snapshots are published on.
func (m *NATSMirror) Subject() string { return m.subject }

// Publish sends state as compact JSON. The outcome is always counted.
func (m *NATSMirror) Publish(ctx context.Context, state *models.ObsState) (err error) {
	defer func() { metrics.RecordMirrorPublish(err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return ErrMirrorClosed
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	msg := nats.NewMsg(m.subject)
	msg.Data = data
	msg.Header.Set(HeaderService, m.service)
	msg.Header.Set(HeaderConnected, strconv.FormatBool(state.Connected))

	if err := m.nc.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish to %s: %w", m.subject, err)
	}
	return nil
}

// Close flushes pending snapshots (bounded) and drops the connection.
func (m *NATSMirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	if m.nc.IsConnected() {
		if err := m.nc.FlushTimeout(2 * time.Second); err != nil {
			logging.Debug().Err(err).Msg("NATS mirror flush on close failed")
		}
	}
	m.nc.Close()
	return nil
}
