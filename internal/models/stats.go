// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package models

// Stats holds OBS performance counters plus the derived drop percentages.
type Stats struct {
	CPUUsage            float64  `json:"cpu_usage"` // percent, 0-100
	MemoryMB            float64  `json:"memory_mb"`
	AvailableDiskMB     *float64 `json:"available_disk_mb,omitempty"`
	ActiveFPS           float64  `json:"active_fps"`
	AverageFrameTimeMS  float64  `json:"average_frame_time_ms"`
	RenderMissedFrames  uint64   `json:"render_missed_frames"`
	RenderTotalFrames   uint64   `json:"render_total_frames"`
	OutputSkippedFrames uint64   `json:"output_skipped_frames"`
	OutputTotalFrames   uint64   `json:"output_total_frames"`

	// Derived. Absent, not zero, when the matching total is zero.
	RenderDropPercent *float64 `json:"render_drop_percent,omitempty"`
	OutputDropPercent *float64 `json:"output_drop_percent,omitempty"`
}

// CalculatePercentages derives the drop percentages from the frame counters.
// Calling it repeatedly yields the same result.
func (s *Stats) CalculatePercentages() {
	s.RenderDropPercent = dropPercent(s.RenderMissedFrames, s.RenderTotalFrames)
	s.OutputDropPercent = dropPercent(s.OutputSkippedFrames, s.OutputTotalFrames)
}

func dropPercent(missed, total uint64) *float64 {
	if total == 0 {
		return nil
	}
	p := float64(missed) / float64(total) * 100.0
	return &p
}
