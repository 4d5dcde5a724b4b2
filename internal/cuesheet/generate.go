package cuesheet

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-cuesplit/internal/timecode"
)

const (
	genIndent    = "    "
	genPerformer = "VA"
	genAlbum     = "No Title"
)

// SplitCount returns how many tracks a fixed-interval split produces:
// ceil(totalSecs / intervalSecs).
func SplitCount(totalSecs, intervalSecs int) (int, error) {
	if intervalSecs <= 0 {
		return 0, fmt.Errorf("%w: interval must be positive, got %ds", ErrInvalidInterval, intervalSecs)
	}
	if totalSecs < 0 {
		return 0, fmt.Errorf("%w: negative media length %ds", ErrInvalidInterval, totalSecs)
	}
	n := totalSecs / intervalSecs
	if totalSecs%intervalSecs != 0 {
		n++
	}
	return n, nil
}

// Generate builds a cue sheet body that cuts media of totalSecs seconds
// into equal intervalSecs-second tracks, the last one possibly shorter.
// Track N is titled and performed by "trkN" and starts at (N-1)*interval.
// Only the base name of mediaPath is written to the FILE line.
func Generate(mediaPath string, totalSecs, intervalSecs int) (string, error) {
	n, err := SplitCount(totalSecs, intervalSecs)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "PERFORMER %q\n", genPerformer)
	fmt.Fprintf(&b, "TITLE %q\n", genAlbum)
	fmt.Fprintf(&b, "FILE \"%s\" WAV\n", filepath.Base(mediaPath))

	for i := range n {
		offset := time.Duration(i*intervalSecs) * time.Second
		name := fmt.Sprintf("trk%d", i+1)
		fmt.Fprintf(&b, "%sTRACK %02d AUDIO\n", genIndent, i+1)
		fmt.Fprintf(&b, "%s%sTITLE \"%s\"\n", genIndent, genIndent, name)
		fmt.Fprintf(&b, "%s%sPERFORMER \"%s\"\n", genIndent, genIndent, name)
		fmt.Fprintf(&b, "%s%sINDEX 01 %s\n", genIndent, genIndent, timecode.FormatCueIndex(offset))
	}

	return b.String(), nil
}
