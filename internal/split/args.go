package split

import (
	"strconv"

	"github.com/alnah/go-cuesplit/internal/timecode"
	"github.com/alnah/go-cuesplit/internal/track"
)

// Cut describes one ffmpeg invocation cutting a track out of the source.
type Cut struct {
	Source        string
	Output        string
	Muxer         string
	Position      int // zero-based position in the resolved list
	Track         track.Resolved
	Album         string
	StripMetadata bool
}

// Args builds the ffmpeg argument list for s. Streams are copied, never
// re-encoded, and an existing output file is never overwritten.
func (s Cut) Args() []string {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-n",
		"-i", s.Source,
		"-f", s.Muxer,
		"-c:a", "copy", "-c:v", "copy",
	}

	if s.StripMetadata {
		args = append(args, "-map_metadata", "-1")
	} else {
		args = appendMeta(args, "title", s.Track.Title)
		args = appendMeta(args, "artist", s.Track.Performer)
		args = appendMeta(args, "album", s.Album)
		args = appendMeta(args, "track", strconv.Itoa(s.Position+1))
	}

	args = append(args, "-ss", timecode.Seconds(s.Track.Begin()))
	if s.Track.Bounded {
		args = append(args, "-t", timecode.Seconds(s.Track.Duration))
	}
	return append(args, s.Output)
}

func appendMeta(args []string, key, value string) []string {
	if value == "" {
		return args
	}
	return append(args, "-metadata", key+"="+value)
}
