// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/obsbridge/internal/models"
)

func printJSON(w io.Writer, state *models.ObsState, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(state, "", "  ")
	} else {
		data, err = json.Marshal(state)
	}
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// printStatus writes the human-readable status report.
func printStatus(w io.Writer, s *models.ObsState) {
	fmt.Fprintf(w, "Connected: %t\n", s.Connected)
	if s.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", s.Error)
	}
	if s.CurrentScene != "" {
		fmt.Fprintf(w, "Scene: %s\n", s.CurrentScene)
	}

	fmt.Fprintf(w, "Recording: %s%s\n", activeLabel(s.Recording.Active), suffix(s.Recording.Paused, " (paused)"))
	if s.Recording.Active && s.Recording.Timecode != "" {
		fmt.Fprintf(w, "  Duration: %s\n", s.Recording.Timecode)
	}

	fmt.Fprintf(w, "Streaming: %s%s\n", activeLabel(s.Streaming.Active), suffix(s.Streaming.Reconnecting, " (reconnecting)"))
	if s.Streaming.Active {
		if s.Streaming.Timecode != "" {
			fmt.Fprintf(w, "  Duration: %s\n", s.Streaming.Timecode)
		}
		if s.Streaming.BitrateKbps != nil {
			fmt.Fprintf(w, "  Bitrate: %d kbps\n", *s.Streaming.BitrateKbps)
		}
	}

	if st := s.Stats; st != nil {
		fmt.Fprintln(w, "Stats:")
		fmt.Fprintf(w, "  CPU: %.1f%%\n", st.CPUUsage)
		fmt.Fprintf(w, "  FPS: %.1f\n", st.ActiveFPS)
		if st.RenderDropPercent != nil {
			fmt.Fprintf(w, "  Render drops: %.2f%%\n", *st.RenderDropPercent)
		}
		if st.OutputDropPercent != nil {
			fmt.Fprintf(w, "  Output drops: %.2f%%\n", *st.OutputDropPercent)
		}
	}

	if len(s.Scenes) > 0 {
		fmt.Fprintf(w, "Scenes: %s\n", strings.Join(s.Scenes, ", "))
	}
}

// printSummary writes one line per snapshot for 'watch'.
func printSummary(w io.Writer, s *models.ObsState) {
	var b strings.Builder
	if s.UpdatedAt > 0 {
		b.WriteString(time.Unix(int64(s.UpdatedAt), 0).Format("15:04:05"))
		b.WriteByte(' ')
	}

	if !s.Connected {
		b.WriteString("disconnected")
		if s.Error != "" {
			b.WriteString(": " + s.Error)
		}
		fmt.Fprintln(w, b.String())
		return
	}

	fmt.Fprintf(&b, "scene=%q", s.CurrentScene)
	switch {
	case s.Recording.Active && s.Recording.Paused:
		fmt.Fprintf(&b, " rec=paused@%s", orZero(s.Recording.Timecode))
	case s.Recording.Active:
		fmt.Fprintf(&b, " rec=%s", orZero(s.Recording.Timecode))
	}
	if s.Streaming.Active {
		fmt.Fprintf(&b, " stream=%s", orZero(s.Streaming.Timecode))
		if s.Streaming.Reconnecting {
			b.WriteString("(reconnecting)")
		}
	}
	if s.Stats != nil {
		fmt.Fprintf(&b, " cpu=%.1f%% fps=%.1f", s.Stats.CPUUsage, s.Stats.ActiveFPS)
	}
	fmt.Fprintln(w, b.String())
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func suffix(on bool, s string) string {
	if on {
		return s
	}
	return ""
}

func orZero(tc string) string {
	if tc == "" {
		return "00:00"
	}
	return tc
}
