// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package obs

import (
	"github.com/goccy/go-json"
)

// OpCode identifies an obs-websocket v5 message type.
type OpCode int

// obs-websocket v5 opcodes used by the client.
const (
	OpHello           OpCode = 0
	OpIdentify        OpCode = 1
	OpIdentified      OpCode = 2
	OpEvent           OpCode = 5
	OpRequest         OpCode = 6
	OpRequestResponse OpCode = 7
)

// RPCVersion is the obs-websocket RPC version the client speaks.
const RPCVersion = 1

// closeAuthenticationFailed is the close code OBS sends when Identify
// carries a wrong authentication string.
const closeAuthenticationFailed = 4009

// Request status codes returned by OBS that callers may want to distinguish.
const (
	CodeSuccess           = 100
	CodeOutputRunning     = 500
	CodeOutputNotRunning  = 501
	CodeOutputPaused      = 502
	CodeOutputNotPaused   = 503
	CodeResourceNotFound  = 600
	CodeResourceNotPaused = 604
)

// Request types issued by the client.
const (
	ReqGetRecordStatus        = "GetRecordStatus"
	ReqGetStreamStatus        = "GetStreamStatus"
	ReqGetCurrentProgramScene = "GetCurrentProgramScene"
	ReqGetSceneList           = "GetSceneList"
	ReqGetStats               = "GetStats"
	ReqStartRecord            = "StartRecord"
	ReqStopRecord             = "StopRecord"
	ReqToggleRecordPause      = "ToggleRecordPause"
	ReqStartStream            = "StartStream"
	ReqStopStream             = "StopStream"
	ReqSetCurrentProgramScene = "SetCurrentProgramScene"
	ReqGetVersion             = "GetVersion"
)

// message is the envelope of every obs-websocket frame.
type message struct {
	Op OpCode          `json:"op"`
	D  json.RawMessage `json:"d"`
}

type hello struct {
	ObsWebSocketVersion string         `json:"obsWebSocketVersion"`
	RPCVersion          int            `json:"rpcVersion"`
	Authentication      *authChallenge `json:"authentication,omitempty"`
}

type authChallenge struct {
	Challenge string `json:"challenge"`
	Salt      string `json:"salt"`
}

type identify struct {
	RPCVersion         int    `json:"rpcVersion"`
	Authentication     string `json:"authentication,omitempty"`
	EventSubscriptions int    `json:"eventSubscriptions"`
}

type identified struct {
	NegotiatedRPCVersion int `json:"negotiatedRpcVersion"`
}

type request struct {
	RequestType string `json:"requestType"`
	RequestID   string `json:"requestId"`
	RequestData any    `json:"requestData,omitempty"`
}

type requestResponse struct {
	RequestType   string          `json:"requestType"`
	RequestID     string          `json:"requestId"`
	RequestStatus requestStatus   `json:"requestStatus"`
	ResponseData  json.RawMessage `json:"responseData,omitempty"`
}

type requestStatus struct {
	Result  bool   `json:"result"`
	Code    int    `json:"code"`
	Comment string `json:"comment,omitempty"`
}

// RecordStatus is the GetRecordStatus response.
type RecordStatus struct {
	OutputActive   bool    `json:"outputActive"`
	OutputPaused   bool    `json:"outputPaused"`
	OutputTimecode string  `json:"outputTimecode"`
	OutputDuration float64 `json:"outputDuration"` // milliseconds
	OutputBytes    uint64  `json:"outputBytes"`
}

// StreamStatus is the GetStreamStatus response.
type StreamStatus struct {
	OutputActive        bool    `json:"outputActive"`
	OutputReconnecting  bool    `json:"outputReconnecting"`
	OutputTimecode      string  `json:"outputTimecode"`
	OutputDuration      float64 `json:"outputDuration"` // milliseconds
	OutputCongestion    float64 `json:"outputCongestion"`
	OutputBytes         uint64  `json:"outputBytes"`
	OutputSkippedFrames uint64  `json:"outputSkippedFrames"`
	OutputTotalFrames   uint64  `json:"outputTotalFrames"`
}

// Scene is one entry of the GetSceneList response.
type Scene struct {
	SceneName  string `json:"sceneName"`
	SceneIndex int    `json:"sceneIndex"`
}

// SceneList is the GetSceneList response.
type SceneList struct {
	CurrentProgramSceneName string  `json:"currentProgramSceneName"`
	Scenes                  []Scene `json:"scenes"`
}

// Names returns the scene names in the order the OBS scene dock shows them
// (highest index first).
func (l *SceneList) Names() []string {
	names := make([]string, len(l.Scenes))
	for i, s := range l.Scenes {
		names[len(l.Scenes)-1-i] = s.SceneName
	}
	return names
}

// Stats is the GetStats response.
type Stats struct {
	CPUUsage               float64 `json:"cpuUsage"`
	MemoryUsage            float64 `json:"memoryUsage"`        // megabytes
	AvailableDiskSpace     float64 `json:"availableDiskSpace"` // megabytes
	ActiveFPS              float64 `json:"activeFps"`
	AverageFrameRenderTime float64 `json:"averageFrameRenderTime"` // milliseconds
	RenderSkippedFrames    uint64  `json:"renderSkippedFrames"`
	RenderTotalFrames      uint64  `json:"renderTotalFrames"`
	OutputSkippedFrames    uint64  `json:"outputSkippedFrames"`
	OutputTotalFrames      uint64  `json:"outputTotalFrames"`
}

// Version is the GetVersion response.
type Version struct {
	OBSVersion          string `json:"obsVersion"`
	OBSWebSocketVersion string `json:"obsWebSocketVersion"`
	RPCVersion          int    `json:"rpcVersion"`
	Platform            string `json:"platform"`
}

type stopRecordResponse struct {
	OutputPath string `json:"outputPath"`
}

type currentProgramScene struct {
	CurrentProgramSceneName string `json:"currentProgramSceneName"`
	SceneName               string `json:"sceneName"`
}

type setCurrentProgramScene struct {
	SceneName string `json:"sceneName"`
}
