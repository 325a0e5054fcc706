// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package obs

import "context"

// GetRecordStatus returns the state of the record output.
func (c *Client) GetRecordStatus(ctx context.Context) (*RecordStatus, error) {
	var out RecordStatus
	if err := c.call(ctx, ReqGetRecordStatus, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStreamStatus returns the state of the stream output.
func (c *Client) GetStreamStatus(ctx context.Context) (*StreamStatus, error) {
	var out StreamStatus
	if err := c.call(ctx, ReqGetStreamStatus, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCurrentProgramScene returns the name of the scene on program.
func (c *Client) GetCurrentProgramScene(ctx context.Context) (string, error) {
	var out currentProgramScene
	if err := c.call(ctx, ReqGetCurrentProgramScene, nil, &out); err != nil {
		return "", err
	}
	if out.CurrentProgramSceneName != "" {
		return out.CurrentProgramSceneName, nil
	}
	return out.SceneName, nil
}

// GetSceneList returns every scene plus the current program scene.
func (c *Client) GetSceneList(ctx context.Context) (*SceneList, error) {
	var out SceneList
	if err := c.call(ctx, ReqGetSceneList, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStats returns OBS performance counters.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	var out Stats
	if err := c.call(ctx, ReqGetStats, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetVersion returns OBS and obs-websocket version information.
func (c *Client) GetVersion(ctx context.Context) (*Version, error) {
	var out Version
	if err := c.call(ctx, ReqGetVersion, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartRecord starts the record output.
func (c *Client) StartRecord(ctx context.Context) error {
	return c.call(ctx, ReqStartRecord, nil, nil)
}

// StopRecord stops the record output and returns the path of the file written.
func (c *Client) StopRecord(ctx context.Context) (string, error) {
	var out stopRecordResponse
	if err := c.call(ctx, ReqStopRecord, nil, &out); err != nil {
		return "", err
	}
	return out.OutputPath, nil
}

// ToggleRecordPause toggles pause on the record output and reports
// whether the recording is paused afterwards.
func (c *Client) ToggleRecordPause(ctx context.Context) (bool, error) {
	if err := c.call(ctx, ReqToggleRecordPause, nil, nil); err != nil {
		return false, err
	}
	status, err := c.GetRecordStatus(ctx)
	if err != nil {
		return false, err
	}
	return status.OutputPaused, nil
}

// StartStream starts the stream output.
func (c *Client) StartStream(ctx context.Context) error {
	return c.call(ctx, ReqStartStream, nil, nil)
}

// StopStream stops the stream output.
func (c *Client) StopStream(ctx context.Context) error {
	return c.call(ctx, ReqStopStream, nil, nil)
}

// SetCurrentProgramScene switches the program scene.
func (c *Client) SetCurrentProgramScene(ctx context.Context, name string) error {
	return c.call(ctx, ReqSetCurrentProgramScene, setCurrentProgramScene{SceneName: name}, nil)
}
