package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-cuesplit/internal/config"
	"github.com/alnah/go-cuesplit/internal/cuesheet"
	"github.com/alnah/go-cuesplit/internal/ffmpeg"
)

var (
	minutesOnly = regexp.MustCompile(`^\d+$`)
	secondsOnly = regexp.MustCompile(`^s(\d+)$`)
)

// parseInterval reads a split interval. Besides Go durations ("90s",
// "1h30m") it accepts a bare number of minutes ("10") and "s" followed by
// a number of seconds ("s90"). The result is truncated to whole seconds
// and must be at least one second.
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	var d time.Duration
	switch {
	case minutesOnly.MatchString(s):
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		d = time.Duration(n) * time.Minute
	case secondsOnly.MatchString(s):
		n, err := strconv.Atoi(s[1:])
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, s)
		}
		d = time.Duration(n) * time.Second
	default:
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return 0, fmt.Errorf("%w: %q (use 10m, 90s, 10 for minutes or s90 for seconds)", ErrInvalidDuration, s)
		}
	}

	if d < time.Second {
		return 0, fmt.Errorf("%w: %q is shorter than one second", ErrInvalidDuration, s)
	}
	return d.Truncate(time.Second), nil
}

// requireFile checks that path names an existing regular file.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}
	return nil
}

// isSheet reports whether path has a track list extension.
func isSheet(path string) bool {
	_, err := cuesheet.KindOf(path)
	return err == nil
}

// assignArgs fills the sheet and media from loose arguments: the first
// .cue or .txt becomes the sheet and the first other file the media,
// unless the matching flag was given. Leftovers are reported on w.
func assignArgs(w io.Writer, args []string, sheet, media *string) {
	for _, a := range args {
		switch {
		case isSheet(a) && *sheet == "":
			*sheet = a
		case !isSheet(a) && *media == "":
			*media = a
		default:
			fmt.Fprintf(w, "Warning: ignoring extra argument %q\n", a)
		}
	}
}

// autoCuePath names the cue sheet generated for media:
// "<dir>/<stem>_o<HEX unix time>.cue".
func autoCuePath(media string, now time.Time) string {
	base := filepath.Base(media)
	stem := strings.TrimLeft(strings.TrimSuffix(base, filepath.Ext(base)), ".")
	return filepath.Join(filepath.Dir(media), fmt.Sprintf("%s_o%X.cue", stem, now.Unix()))
}

// resolveOutputDir returns the directory tracks are written to. An
// explicit dir must already exist. Otherwise a fresh "out_<HEX unix time>"
// directory is planned under the configured output-dir, or next to the
// sheet; create reports that the caller must make it.
func resolveOutputDir(explicit, configured, sheet string, now time.Time) (dir string, create bool, err error) {
	if explicit != "" {
		explicit = config.ExpandPath(explicit)
		info, err := os.Stat(explicit)
		if err != nil || !info.IsDir() {
			return "", false, fmt.Errorf("%w: %s", ErrOutputDirNotFound, explicit)
		}
		return explicit, false, nil
	}

	base := filepath.Dir(sheet)
	if configured != "" {
		base = config.ExpandPath(configured)
	}
	return filepath.Join(base, fmt.Sprintf("out_%X", now.Unix())), true, nil
}

// setupFFmpeg resolves ffmpeg and announces its version.
func setupFFmpeg(ctx context.Context, env *Env, cfg config.Config) (string, error) {
	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx, cfg.FFmpegPath)
	if err != nil {
		return "", err
	}
	version, err := env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)
	if err != nil {
		return "", fmt.Errorf("no working ffmpeg at %s: %w", ffmpegPath, err)
	}
	fmt.Fprintf(env.Stderr, "Using ffmpeg version: [%s]\n", version)
	return ffmpegPath, nil
}

// synthesizeCue probes media and writes a cue sheet splitting it every
// interval to out. It returns the number of tracks written.
func synthesizeCue(ctx context.Context, env *Env, ffmpegPath, media string, interval time.Duration, out string) (int, error) {
	length, err := env.Prober.Probe(ctx, ffmpegPath, media)
	if err != nil {
		return 0, err
	}
	total := int(length / time.Second)
	if total == 0 {
		return 0, fmt.Errorf("%w: %s: zero media length", ffmpeg.ErrProbeFailed, media)
	}

	secs := int(interval / time.Second)
	body, err := cuesheet.Generate(media, total, secs)
	if err != nil {
		return 0, err
	}
	if err := writeFileAtomic(out, body); err != nil {
		return 0, err
	}
	n, _ := cuesheet.SplitCount(total, secs)
	return n, nil
}
