// Package format renders durations, timestamps and sizes for CLI
// display.
package format

import (
	"fmt"
	"time"
)

// Seconds formats a second count as H:MM:SS, or M:SS under an hour.
// Negative values clamp to 0:00.
func Seconds(secs int) string {
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := secs % 3600 / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// Range formats a start/end second pair as "start-end".
func Range(startSec, endSec int) string {
	return Seconds(startSec) + "-" + Seconds(endSec)
}

// DurationHuman formats a duration for human display.
// Examples: "2h", "1h30m", "30m", "45s".
func DurationHuman(d time.Duration) string {
	if d >= time.Hour {
		hours := d / time.Hour
		minutes := (d % time.Hour) / time.Minute
		if minutes > 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	if d >= time.Minute {
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return fmt.Sprintf("%ds", d/time.Second)
}

// Size formats a size in bytes for human display.
// Uses MB for sizes >= 1MB, KB otherwise.
func Size(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	if bytes >= mb {
		return fmt.Sprintf("%d MB", bytes/mb)
	}
	if bytes >= kb {
		return fmt.Sprintf("%d KB", bytes/kb)
	}
	return fmt.Sprintf("%d bytes", bytes)
}
