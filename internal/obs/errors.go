// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package obs

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport marks failures of the underlying websocket. A session
	// that returned a transport error is no longer usable.
	ErrTransport = errors.New("obs: transport failure")

	// ErrClosed is returned for requests on a closed session.
	ErrClosed = fmt.Errorf("%w: session closed", ErrTransport)

	// ErrAuthRequired is returned when OBS requests authentication and no
	// password is configured.
	ErrAuthRequired = errors.New("obs: server requires a password")

	// ErrAuthFailed is returned when OBS rejects the supplied password.
	ErrAuthFailed = errors.New("obs: authentication failed")

	// ErrProtocol is returned when OBS sends an unexpected message.
	ErrProtocol = errors.New("obs: protocol violation")
)

// ConnectionError reports a failed session acquisition.
type ConnectionError struct {
	Host string
	Port int
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to OBS at %s:%d: %v", e.Host, e.Port, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// RequestError reports a request OBS answered with a failed status. The
// session remains usable.
type RequestError struct {
	RequestType string
	Code        int
	Comment     string
}

func (e *RequestError) Error() string {
	if e.Comment == "" {
		return fmt.Sprintf("obs request %s failed (code %d)", e.RequestType, e.Code)
	}
	return fmt.Sprintf("obs request %s failed (code %d): %s", e.RequestType, e.Code, e.Comment)
}

// IsTransport reports whether err means the session is gone.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsRequestCode reports whether err is a RequestError carrying code.
func IsRequestCode(err error, code int) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Code == code
}

func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, op, err)
}
