package cuesheet

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alnah/go-cuesplit/internal/timecode"
	"github.com/alnah/go-cuesplit/internal/track"
)

var (
	// quotedPattern captures the first double-quoted string of a line.
	quotedPattern = regexp.MustCompile(`"(.*?)"`)
	// fileTokenPattern captures an unquoted FILE name up to the first blank.
	fileTokenPattern = regexp.MustCompile(`FILE\s+([^\s"]+)`)
	// index01Pattern matches the directive part of an "INDEX 01 MM:SS:FF" line.
	index01Pattern = regexp.MustCompile(`(?i)^INDEX\s+01\b`)
)

// pending accumulates the fields of the track being scanned. It is copied
// out and reset when the track closes, never shared with the result.
type pending struct {
	rec     track.Record
	touched bool
}

// closeInto appends the accumulated record to out with the next dense
// index, if any field was set, and resets the accumulator.
func (p *pending) closeInto(out []track.Record) []track.Record {
	if !p.touched {
		return out
	}
	rec := p.rec
	rec.Index = len(out)
	*p = pending{}
	return append(out, rec)
}

// quoted returns the first double-quoted substring of line, or "".
func quoted(line string) string {
	if m := quotedPattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// fileName extracts the media name of a FILE line: the quoted string if
// present, otherwise the first token after FILE.
func fileName(line string) string {
	if s := quoted(line); s != "" {
		return s
	}
	if m := fileTokenPattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// ParseCue scans cue sheet content in one forward pass.
//
// cuePath is used to resolve a relative FILE entry and may be empty.
// When mediaPath is not empty, FILE lines are ignored and mediaPath is
// returned unchanged in Sheet.MediaPath. Only the first usable FILE entry
// is honored.
func (p *Parser) ParseCue(content, cuePath, mediaPath string) Sheet {
	sheet := Sheet{Kind: KindCue, MediaPath: mediaPath}
	var cur pending
	tracksSeen := 0

	for i, raw := range lines(content) {
		line := strings.TrimSpace(raw)
		lineNo := i + 1

		switch {
		case sheet.MediaPath == "" && strings.HasPrefix(line, "FILE"):
			name := fileName(line)
			if name == "" {
				break
			}
			if !filepath.IsAbs(name) && cuePath != "" {
				p.logger.Info("prefixing media path from cue sheet with the cue sheet directory", "file", name)
				name = filepath.Join(filepath.Dir(cuePath), name)
			}
			sheet.MediaPath = name
		case strings.HasPrefix(line, "TRACK"):
			sheet.Tracks = cur.closeInto(sheet.Tracks)
			tracksSeen++
		}

		if tracksSeen == 0 {
			switch {
			case strings.HasPrefix(line, "TITLE"):
				sheet.Album = quoted(line)
			case strings.HasPrefix(line, "PERFORMER"):
				sheet.Performer = quoted(line)
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "TITLE"):
			cur.rec.Title = quoted(line)
			cur.touched = true
		case strings.HasPrefix(line, "PERFORMER"), strings.HasPrefix(line, "AUTHOR"):
			cur.rec.Performer = quoted(line)
			cur.touched = true
		default:
			loc := index01Pattern.FindStringIndex(line)
			if loc == nil {
				continue
			}
			start, err := timecode.ParseCueIndex(line[loc[1]:])
			if err != nil {
				sheet.Issues = append(sheet.Issues, track.Issue{
					Kind:    track.ParseWarning,
					Line:    lineNo,
					Track:   tracksSeen - 1,
					Message: fmt.Sprintf("bad time format of the INDEX: %v", err),
				})
				p.logger.Warn("bad time format of the INDEX", "line", lineNo, "text", line)
				continue
			}
			cur.rec.Start = start
			cur.touched = true
		}
	}

	sheet.Tracks = cur.closeInto(sheet.Tracks)
	return sheet
}
