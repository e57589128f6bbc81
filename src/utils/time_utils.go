package utils

import (
	"fmt"
	"time"
)

// FormatCountdown renders a remaining duration as MM:SS, rounding down to the second.
// Negative durations render as 00:00. Minutes keep counting past 99.
func FormatCountdown(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	secs := int64(remaining / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

// SecondsLeft is the whole number of seconds left, rounded down.
func SecondsLeft(remaining time.Duration) int {
	if remaining <= 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// ToMillis converts t to epoch milliseconds.
func ToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to UTC time.
func FromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
