// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package models

import (
	"github.com/goccy/go-json"
)

// ObsState is the snapshot published to the state file.
//
// Invariant: when Connected is false, Recording.Active and Streaming.Active
// are both false. Use SetDisconnected to leave the connected state.
type ObsState struct {
	Connected    bool           `json:"connected"`
	Recording    RecordingState `json:"recording"`
	Streaming    StreamingState `json:"streaming"`
	CurrentScene string         `json:"current_scene,omitempty"`
	Scenes       []string       `json:"scenes"`
	Stats        *Stats         `json:"stats,omitempty"`
	Error        string         `json:"error,omitempty"`
	UpdatedAt    uint64         `json:"updated_at_secs,omitempty"` // unix seconds
}

// RecordingState describes the recording output.
type RecordingState struct {
	Active      bool   `json:"active"`
	Paused      bool   `json:"paused"` // meaningful only while Active
	ElapsedSecs uint64 `json:"elapsed_secs"`
	Timecode    string `json:"timecode,omitempty"`
}

// StreamingState describes the stream output.
type StreamingState struct {
	Active       bool    `json:"active"`
	ElapsedSecs  uint64  `json:"elapsed_secs"`
	Timecode     string  `json:"timecode,omitempty"`
	BitrateKbps  *uint32 `json:"bitrate_kbps,omitempty"`
	Reconnecting bool    `json:"reconnecting"`
}

// NewObsState returns the fully disconnected state the daemon starts with.
func NewObsState() ObsState {
	return ObsState{Scenes: []string{}}
}

// SetConnected marks the state connected and clears any previous error.
func (s *ObsState) SetConnected() {
	s.Connected = true
	s.Error = ""
}

// SetDisconnected marks the state disconnected, clears both activities and
// records reason as the error. An empty reason clears the error.
func (s *ObsState) SetDisconnected(reason string) {
	s.Connected = false
	s.Error = reason
	s.Recording = RecordingState{}
	s.Streaming = StreamingState{}
}

// Clone returns a deep copy of s that shares no memory with it.
func (s *ObsState) Clone() ObsState {
	out := *s
	out.Scenes = make([]string, len(s.Scenes))
	copy(out.Scenes, s.Scenes)
	if s.Stats != nil {
		stats := *s.Stats
		stats.RenderDropPercent = cloneFloat(s.Stats.RenderDropPercent)
		stats.OutputDropPercent = cloneFloat(s.Stats.OutputDropPercent)
		stats.AvailableDiskMB = cloneFloat(s.Stats.AvailableDiskMB)
		out.Stats = &stats
	}
	if s.Streaming.BitrateKbps != nil {
		kbps := *s.Streaming.BitrateKbps
		out.Streaming.BitrateKbps = &kbps
	}
	return out
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// MarshalJSON encodes the state, writing a nil scene list as [].
func (s ObsState) MarshalJSON() ([]byte, error) {
	type plain ObsState
	if s.Scenes == nil {
		s.Scenes = []string{}
	}
	return json.Marshal(plain(s))
}

// UnmarshalJSON decodes the state. A missing or null scene list decodes
// as an empty slice.
func (s *ObsState) UnmarshalJSON(data []byte) error {
	type plain ObsState
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.Scenes == nil {
		p.Scenes = []string{}
	}
	*s = ObsState(p)
	return nil
}
