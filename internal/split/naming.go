package split

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alnah/go-cuesplit/internal/track"
)

// maxLabelLen caps the "_Performer_Title" part of a file name.
const maxLabelLen = 64

var (
	unsafeRun     = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	underscoreRun = regexp.MustCompile(`_{2,}`)
)

// muxers maps output extensions to ffmpeg format names where they differ.
var muxers = map[string]string{
	"mkv": "matroska",
	"mka": "matroska",
	"m4a": "ipod",
	"aac": "adts",
}

// Muxer returns the ffmpeg -f value for an output extension.
func Muxer(ext string) string {
	if m, ok := muxers[ext]; ok {
		return m
	}
	return ext
}

// Extension returns the output extension: format when set, otherwise the
// extension of the source media, lower-cased and without the dot.
func Extension(format, mediaPath string) string {
	if format != "" {
		return strings.ToLower(strings.TrimPrefix(format, "."))
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(mediaPath), "."))
}

// Label turns performer and title into a file name fragment such as
// "_Daft_Punk_One_More_Time": characters outside [A-Za-z0-9_] become
// underscores, runs collapse, and the result is capped at 64 bytes.
func Label(performer, title string) string {
	s := "_" + unsafeRun.ReplaceAllString(performer, "_") + "_" + unsafeRun.ReplaceAllString(title, "_")
	s = underscoreRun.ReplaceAllString(strings.TrimRight(s, "_"), "_")
	if len(s) > maxLabelLen {
		s = s[:maxLabelLen]
	}
	return s
}

// OutputPath returns "<dir>/<NNN><label>.<ext>" for the track at the
// zero-based position of the resolved list.
func OutputPath(dir string, position int, rec track.Record, ext string, noNames bool) string {
	label := ""
	if !noNames {
		label = Label(rec.Performer, rec.Title)
	}
	return filepath.Join(dir, fmt.Sprintf("%03d%s.%s", position+1, label, ext))
}
