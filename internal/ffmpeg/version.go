package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// minMajorVersion is the oldest ffmpeg release known to handle the
// stream-copy options used for splitting.
const minMajorVersion = 4

// VersionChecker reads the version of an ffmpeg binary.
type VersionChecker struct {
	executor *Executor
	stderr   io.Writer
}

// VersionCheckerOption configures a VersionChecker.
type VersionCheckerOption func(*VersionChecker)

// WithVersionExecutor sets the executor used to run "ffmpeg -version".
func WithVersionExecutor(e *Executor) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.executor = e }
}

// WithVersionStderr sets the writer for the old-version warning.
func WithVersionStderr(w io.Writer) VersionCheckerOption {
	return func(vc *VersionChecker) { vc.stderr = w }
}

// NewVersionChecker creates a VersionChecker.
func NewVersionChecker(opts ...VersionCheckerOption) *VersionChecker {
	vc := &VersionChecker{
		executor: NewExecutor(),
		stderr:   os.Stderr,
	}
	for _, opt := range opts {
		opt(vc)
	}
	return vc
}

// Check returns the version token printed by "ffmpeg -version", e.g.
// "6.1.1" or "n7.0-14-g1234". An unrecognizable banner is an error
// wrapping ErrUnknownVersion. Releases older than 4 only trigger a warning.
func (vc *VersionChecker) Check(ctx context.Context, ffmpegPath string) (string, error) {
	output, err := vc.executor.RunOutput(ctx, ffmpegPath, []string{"-version"})
	if err != nil && output == "" {
		return "", fmt.Errorf("%w: %v", ErrUnknownVersion, err)
	}

	version, major, ok := parseVersionBanner(output)
	if !ok {
		first, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
		return "", fmt.Errorf("%w: %q", ErrUnknownVersion, first)
	}
	if major >= 0 && major < minMajorVersion {
		fmt.Fprintf(vc.stderr, "Warning: ffmpeg version %d detected, version %d+ recommended\n", major, minMajorVersion)
	}
	return version, nil
}

// parseVersionBanner extracts the token after "ffmpeg version" on the
// first line and its leading major number. major is -1 for builds named
// after a git revision (e.g. "N-112345-g..."), which carry no release number.
func parseVersionBanner(output string) (version string, major int, ok bool) {
	first, _, _ := strings.Cut(output, "\n")
	fields := strings.Fields(first)
	if len(fields) < 3 || fields[0] != "ffmpeg" || fields[1] != "version" {
		return "", 0, false
	}
	version = fields[2]

	digits := strings.TrimPrefix(version, "n")
	end := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' })
	if end < 0 {
		end = len(digits)
	}
	if end == 0 {
		return version, -1, true
	}
	major, err := strconv.Atoi(digits[:end])
	if err != nil {
		return version, -1, true
	}
	return version, major, true
}
