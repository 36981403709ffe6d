package domain

import (
	"fmt"
	"time"
)

// FormatClock renders d as zero-padded HH:MM:SS, truncating sub-second parts.
func FormatClock(d time.Duration) string {
	h, m, s := split(d)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatCompact renders MM:SS when d is under an hour, HH:MM:SS otherwise.
func FormatCompact(d time.Duration) string {
	h, m, s := split(d)
	if h == 0 {
		return fmt.Sprintf("%02d:%02d", m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func split(d time.Duration) (int64, int64, int64) {
	if d < 0 {
		d = 0
	}
	secs := int64(d / time.Second)
	return secs / 3600, (secs % 3600) / 60, secs % 60
}
