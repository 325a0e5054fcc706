// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package obs

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/obsbridge/internal/metrics"
)

const (
	// DefaultHandshakeTimeout bounds dialing plus the Hello/Identify exchange.
	DefaultHandshakeTimeout = 10 * time.Second

	// DefaultRequestTimeout bounds a single request/response round trip.
	DefaultRequestTimeout = 5 * time.Second

	subprotocolJSON = "obswebsocket.json"
)

// Options configures a connection to obs-websocket.
type Options struct {
	Host             string
	Port             int
	Password         string
	HandshakeTimeout time.Duration
	RequestTimeout   time.Duration
}

func (o Options) withDefaults() Options {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	return o
}

// Client is an identified obs-websocket v5 session.
//
// Requests are serialized: one request is in flight at a time. After any
// transport error the client closes itself and every further request
// returns ErrClosed.
type Client struct {
	conn           *websocket.Conn
	host           string
	port           int
	requestTimeout time.Duration

	obsWebSocketVersion string
	rpcVersion          int

	mu     sync.Mutex
	closed bool
}

// Connect dials obs-websocket and completes the Hello/Identify handshake,
// authenticating when the server asks for it. Failures are returned as
// *ConnectionError.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	opts = opts.withDefaults()

	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(opts.Host, strconv.Itoa(opts.Port))}
	dialer := websocket.Dialer{
		HandshakeTimeout: opts.HandshakeTimeout,
		Subprotocols:     []string{subprotocolJSON},
	}

	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("websocket dial failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, &ConnectionError{Host: opts.Host, Port: opts.Port, Err: err}
	}

	c := &Client{
		conn:           conn,
		host:           opts.Host,
		port:           opts.Port,
		requestTimeout: opts.RequestTimeout,
	}
	if err := c.identify(ctx, opts.Password, opts.HandshakeTimeout); err != nil {
		_ = conn.Close()
		return nil, &ConnectionError{Host: opts.Host, Port: opts.Port, Err: err}
	}
	return c, nil
}

func (c *Client) identify(ctx context.Context, password string, timeout time.Duration) error {
	if err := c.setDeadline(ctx, timeout); err != nil {
		return err
	}
	stop := context.AfterFunc(ctx, c.interrupt)
	defer stop()

	var h hello
	if err := c.readExpect(ctx, OpHello, &h); err != nil {
		return fmt.Errorf("read hello: %w", err)
	}
	c.obsWebSocketVersion = h.ObsWebSocketVersion

	id := identify{RPCVersion: RPCVersion}
	if h.Authentication != nil {
		if password == "" {
			return ErrAuthRequired
		}
		id.Authentication = authResponse(password, h.Authentication.Salt, h.Authentication.Challenge)
	}
	if err := c.write(OpIdentify, id); err != nil {
		return fmt.Errorf("send identify: %w", contextError(ctx, err))
	}

	var ided identified
	if err := c.readExpect(ctx, OpIdentified, &ided); err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == closeAuthenticationFailed {
			return ErrAuthFailed
		}
		return fmt.Errorf("read identified: %w", err)
	}
	c.rpcVersion = ided.NegotiatedRPCVersion

	return c.clearDeadline()
}

// ServerVersion returns the obs-websocket version announced in Hello.
func (c *Client) ServerVersion() string { return c.obsWebSocketVersion }

// Address returns the host and port the client is connected to.
func (c *Client) Address() (string, int) { return c.host, c.port }

// call issues one request and decodes its response data into out (if non-nil).
func (c *Client) call(ctx context.Context, requestType string, data, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	start := time.Now()
	err := c.roundTrip(ctx, requestType, data, out)
	metrics.RecordRequest(requestType, resultLabel(err), time.Since(start))

	if IsTransport(err) {
		_ = c.closeLocked()
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, requestType string, data, out any) error {
	if err := c.setDeadline(ctx, c.requestTimeout); err != nil {
		return transportError("set deadline", err)
	}
	stop := context.AfterFunc(ctx, c.interrupt)
	defer stop()

	id := uuid.NewString()
	if err := c.write(OpRequest, request{RequestType: requestType, RequestID: id, RequestData: data}); err != nil {
		return transportError("write "+requestType, contextError(ctx, err))
	}

	for {
		m, err := c.readMessage()
		if err != nil {
			return transportError("read "+requestType, contextError(ctx, err))
		}
		if m.Op != OpRequestResponse {
			continue
		}

		var resp requestResponse
		if err := json.Unmarshal(m.D, &resp); err != nil {
			return transportError("decode "+requestType, err)
		}
		if resp.RequestID != id {
			continue
		}
		if !resp.RequestStatus.Result {
			return &RequestError{
				RequestType: requestType,
				Code:        resp.RequestStatus.Code,
				Comment:     resp.RequestStatus.Comment,
			}
		}
		if out == nil || len(resp.ResponseData) == 0 {
			return nil
		}
		if err := json.Unmarshal(resp.ResponseData, out); err != nil {
			return fmt.Errorf("obs: decode %s response: %w", requestType, err)
		}
		return nil
	}
}

func (c *Client) readExpect(ctx context.Context, op OpCode, out any) error {
	m, err := c.readMessage()
	if err != nil {
		return contextError(ctx, err)
	}
	if m.Op != op {
		return fmt.Errorf("%w: expected op %d, got %d", ErrProtocol, op, m.Op)
	}
	if err := json.Unmarshal(m.D, out); err != nil {
		return fmt.Errorf("%w: decode op %d: %v", ErrProtocol, op, err)
	}
	return nil
}

func (c *Client) readMessage() (*message, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	var m message
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: decode frame: %v", ErrProtocol, err)
	}
	return &m, nil
}

func (c *Client) write(op OpCode, d any) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(message{Op: op, D: payload})
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

// setDeadline applies the earlier of now+timeout and the context deadline
// to both directions of the connection.
func (c *Client) setDeadline(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	return c.conn.SetWriteDeadline(deadline)
}

func (c *Client) clearDeadline() error {
	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		return err
	}
	return c.conn.SetWriteDeadline(time.Time{})
}

// interrupt unblocks a pending read when the caller's context is done.
func (c *Client) interrupt() {
	_ = c.conn.SetReadDeadline(time.Now())
}

// Close sends a normal closure frame and releases the connection.
// It is safe to call more than once.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if c.closed {
		return nil
	}
	c.closed = true
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.conn.Close()
}

func contextError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case IsTransport(err):
		return "transport_error"
	default:
		return "request_error"
	}
}
