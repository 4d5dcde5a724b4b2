package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/alnah/go-cuesplit/internal/timecode"
)

// durationPattern finds the container duration in ffmpeg's input banner,
// e.g. "Duration: 01:02:03.45, start: 0.000000, bitrate: 320 kb/s".
var durationPattern = regexp.MustCompile(`Duration:\s*(\d+:\d+:\d+(?:\.\d+)?)`)

// Probe returns the duration of the media at mediaPath.
//
// It runs "ffmpeg -hide_banner -i FILE" without an output, which makes
// ffmpeg print the input description and exit with status 1; that status
// is expected. Any other outcome, including a crash or a kill after the
// banner was printed, wraps ErrProbeFailed.
func (e *Executor) Probe(ctx context.Context, ffmpegPath, mediaPath string) (time.Duration, error) {
	output, err := e.RunOutput(ctx, ffmpegPath, []string{"-hide_banner", "-i", mediaPath})
	if !inspectExit(err) {
		return 0, fmt.Errorf("%w: %s: %v", ErrProbeFailed, mediaPath, err)
	}
	d, perr := parseDuration(output)
	if perr != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrProbeFailed, mediaPath, perr)
	}
	return d, nil
}

// exitCoder is implemented by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}

// inspectExit reports whether err is a clean exit or the status 1 ffmpeg
// returns when no output file is given.
func inspectExit(err error) bool {
	if err == nil {
		return true
	}
	var ec exitCoder
	return errors.As(err, &ec) && ec.ExitCode() == 1
}

// parseDuration reads the first "Duration:" entry of ffmpeg's stderr.
// Live streams report "Duration: N/A" and are rejected.
func parseDuration(output string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(output)
	if m == nil {
		return 0, fmt.Errorf("no duration in ffmpeg output")
	}
	return timecode.ParseHMS(m[1])
}
