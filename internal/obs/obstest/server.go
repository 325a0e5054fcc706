// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

// Package obstest provides an in-process obs-websocket v5 server for tests.
package obstest

import (
	"crypto/sha256"
	"encoding/base64"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Handler answers one request. A non-zero code (other than 100) marks the
// request as failed.
type Handler func(data json.RawMessage) (response any, code int, comment string)

const (
	testSalt      = "lM1GncleQOaCu9lT1yeUZhFYnqhsLLP1G5lAGo3ixaI="
	testChallenge = "+IxH4CnCiqpX1rM9scsNynZzbOe4KhDeYcTNS3PDaeY="
)

// Server is a fake OBS instance speaking enough of obs-websocket v5 for
// the client: Hello, optional authentication, Identify, Request.
type Server struct {
	srv      *httptest.Server
	password string
	upgrader websocket.Upgrader

	mu       sync.Mutex
	handlers map[string]Handler
	requests []string
	conns    map[*websocket.Conn]struct{}
}

// NewServer starts a fake server. An empty password disables authentication.
// The server is closed when the test ends.
func NewServer(t testing.TB, password string) *Server {
	t.Helper()

	s := &Server{
		password: password,
		upgrader: websocket.Upgrader{Subprotocols: []string{"obswebsocket.json"}},
		handlers: make(map[string]Handler),
		conns:    make(map[*websocket.Conn]struct{}),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.serveWS))
	t.Cleanup(s.Close)
	return s
}

// Close drops every connection and stops the server.
func (s *Server) Close() {
	s.DropConnections()
	s.srv.Close()
}

// HostPort returns the address clients should dial.
func (s *Server) HostPort() (string, int) {
	host, portStr, _ := net.SplitHostPort(s.srv.Listener.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return host, port
}

// Handle registers h for requestType, replacing any previous handler.
func (s *Server) Handle(requestType string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[requestType] = h
}

// Respond makes requestType succeed with resp as response data.
func (s *Server) Respond(requestType string, resp any) {
	s.Handle(requestType, func(json.RawMessage) (any, int, string) { return resp, 100, "" })
}

// Fail makes requestType fail with the given status code.
func (s *Server) Fail(requestType string, code int, comment string) {
	s.Handle(requestType, func(json.RawMessage) (any, int, string) { return nil, code, comment })
}

// Requests returns the request types received so far, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}

// DropConnections closes every open client connection without a close frame.
func (s *Server) DropConnections() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		_ = c.Close()
		delete(s.conns, c)
	}
}

type frame struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		_ = conn.Close()
	}()

	hello := map[string]any{"obsWebSocketVersion": "5.5.2", "rpcVersion": 1}
	if s.password != "" {
		hello["authentication"] = map[string]string{"challenge": testChallenge, "salt": testSalt}
	}
	if err := writeFrame(conn, 0, hello); err != nil {
		return
	}

	var ident struct {
		RPCVersion     int    `json:"rpcVersion"`
		Authentication string `json:"authentication"`
	}
	if err := readFrame(conn, 1, &ident); err != nil {
		return
	}
	if s.password != "" && ident.Authentication != expectedAuth(s.password) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(4009, "Authentication failed."),
			time.Now().Add(time.Second))
		return
	}
	if err := writeFrame(conn, 2, map[string]int{"negotiatedRpcVersion": 1}); err != nil {
		return
	}

	for {
		var req struct {
			RequestType string          `json:"requestType"`
			RequestID   string          `json:"requestId"`
			RequestData json.RawMessage `json:"requestData"`
		}
		if err := readFrame(conn, 6, &req); err != nil {
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, req.RequestType)
		h, ok := s.handlers[req.RequestType]
		s.mu.Unlock()

		resp, code, comment := any(nil), 204, "Unknown request type."
		if ok {
			resp, code, comment = h(req.RequestData)
		}

		out := map[string]any{
			"requestType": req.RequestType,
			"requestId":   req.RequestID,
			"requestStatus": map[string]any{
				"result":  code == 100,
				"code":    code,
				"comment": comment,
			},
		}
		if resp != nil {
			out["responseData"] = resp
		}
		if err := writeFrame(conn, 7, out); err != nil {
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, op int, d any) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return err
	}
	data, err := json.Marshal(frame{Op: op, D: payload})
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

func readFrame(conn *websocket.Conn, op int, out any) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		if f.Op != op {
			continue
		}
		return json.Unmarshal(f.D, out)
	}
}

func expectedAuth(password string) string {
	secret := sha256.Sum256([]byte(password + testSalt))
	resp := sha256.Sum256([]byte(base64.StdEncoding.EncodeToString(secret[:]) + testChallenge))
	return base64.StdEncoding.EncodeToString(resp[:])
}
