// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package api

import "net/http"

type handler struct {
	source StateSource
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status    string `json:"status"` // "ok" or "stopped"
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if state, ok := h.source.Snapshot(); ok {
		resp.Connected = state.Connected
		resp.Error = state.Error
	}

	status := http.StatusOK
	if !h.source.Running() {
		resp.Status = "stopped"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, r, status, resp)
}

func (h *handler) state(w http.ResponseWriter, r *http.Request) {
	state, ok := h.source.Snapshot()
	if !ok {
		writeError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "no state published yet")
		return
	}
	writeJSON(w, r, http.StatusOK, &state)
}
