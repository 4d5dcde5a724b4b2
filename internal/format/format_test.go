package format_test

// Notes:
// - Negative values are not tested: these functions only see real
//   durations and sizes.

import (
	"testing"
	"time"

	"github.com/alnah/go-cuesplit/internal/format"
)

// ---------------------------------------------------------------------------
// TestDuration - Formats duration as HH:MM:SS or MM:SS
// ---------------------------------------------------------------------------

func TestDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input time.Duration
		want  string
	}{
		{name: "zero", input: 0, want: "00:00"},
		{name: "boundary: 59 seconds", input: 59 * time.Second, want: "00:59"},
		{name: "mixed minutes and seconds", input: 5*time.Minute + 30*time.Second, want: "05:30"},
		{name: "fraction truncated", input: 3*time.Minute + 24*time.Second + 999*time.Millisecond, want: "03:24"},
		{name: "boundary: exactly 1 hour", input: time.Hour, want: "01:00:00"},
		{name: "long album", input: time.Hour + 4*time.Minute + 54*time.Second, want: "01:04:54"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := format.Duration(tt.input); got != tt.want {
				t.Errorf("Duration(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDurationHuman - Compact split intervals
// ---------------------------------------------------------------------------

func TestDurationHuman(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input time.Duration
		want  string
	}{
		{input: 45 * time.Second, want: "45s"},
		{input: 10 * time.Minute, want: "10m"},
		{input: 90 * time.Second, want: "1m30s"},
		{input: time.Hour, want: "1h"},
		{input: time.Hour + 30*time.Minute + 10*time.Second, want: "1h30m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := format.DurationHuman(tt.input); got != tt.want {
				t.Errorf("DurationHuman(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSize
// ---------------------------------------------------------------------------

func TestSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input int64
		want  string
	}{
		{input: 0, want: "0 bytes"},
		{input: 1023, want: "1023 bytes"},
		{input: 1024, want: "1 KB"},
		{input: 1024*1024 - 1, want: "1023 KB"},
		{input: 45 * 1024 * 1024, want: "45 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			if got := format.Size(tt.input); got != tt.want {
				t.Errorf("Size(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestTail
// ---------------------------------------------------------------------------

func TestTail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "short kept", input: "/music/a.cue", max: 46, want: "/music/a.cue"},
		{name: "exact length kept", input: "abcdef", max: 6, want: "abcdef"},
		{name: "long truncated", input: "/home/user/music/albums/2019/a.flac", max: 12, want: ".../2019/a.flac"},
		{name: "multibyte counted as runes", input: "/音楽/アルバム.flac", max: 9, want: "...アルバム.flac"},
		{name: "no limit", input: "abc", max: 0, want: "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := format.Tail(tt.input, tt.max); got != tt.want {
				t.Errorf("Tail(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
		})
	}
}
