package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatCountdown(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-3 * time.Second, "00:00"},
		{999 * time.Millisecond, "00:00"},
		{5*time.Second + 400*time.Millisecond, "00:05"},
		{61 * time.Second, "01:01"},
		{15 * time.Minute, "15:00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCountdown(tc.in), tc.in.String())
	}
}

func TestSecondsLeftAndMillis(t *testing.T) {
	assert.Equal(t, 4, SecondsLeft(4900*time.Millisecond))
	assert.Equal(t, 0, SecondsLeft(-time.Second))

	ts := time.Date(2026, 1, 2, 10, 5, 0, 0, time.UTC)
	assert.Equal(t, int64(1767348300000), ToMillis(ts))
	assert.Equal(t, ts, FromMillis(1767348300000))
}
