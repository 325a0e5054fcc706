// OBSBridge - OBS Studio State Bridge Daemon
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/obsbridge

package models

import "fmt"

// FormatTimecode renders seconds as MM:SS, or HH:MM:SS once an hour has
// elapsed. Hours are not capped, so 360000 renders as "100:00:00".
func FormatTimecode(secs uint64) string {
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
