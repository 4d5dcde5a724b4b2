package cuesheet

import (
	"fmt"
	"strings"

	"github.com/alnah/go-cuesplit/internal/timecode"
	"github.com/alnah/go-cuesplit/internal/track"
)

// labelSeparator splits "performer - title".
const labelSeparator = " -"

// labelTrim is the set of characters trimmed around performer and title.
const labelTrim = " -\r\n"

// ParseText parses a timestamp list, one track per line:
//
//	1:04:54.010 Performer - Title
//	3:24 Title only
//
// Each record's Index is the zero-based line number, so indices are not
// dense when lines are skipped. Lines without a timestamp become
// ParseWarning issues, blank lines included, so the error count reflects
// every line that produced no track. Line order is kept.
func (p *Parser) ParseText(content string) Sheet {
	sheet := Sheet{Kind: KindText}

	for i, raw := range lines(content) {
		line := strings.TrimSpace(raw)
		m := timecode.Find(line)
		ts, err := timecode.Normalize(m)
		if err != nil {
			sheet.Issues = append(sheet.Issues, track.Issue{
				Kind:    track.ParseWarning,
				Line:    i + 1,
				Message: fmt.Sprintf("no track info: %v", err),
			})
			p.logger.Warn("no track info", "line", i+1, "text", line)
			continue
		}

		performer, title := splitLabel(line[m.End:])
		sheet.Tracks = append(sheet.Tracks, track.Record{
			Index:     i,
			Title:     title,
			Performer: performer,
			Start:     ts.Duration(),
		})
	}

	return sheet
}

// splitLabel splits the text after a timestamp at the first " -" into
// performer and title. Without a separator everything is the title.
func splitLabel(rest string) (performer, title string) {
	before, after, found := strings.Cut(rest, labelSeparator)
	if !found {
		return "", strings.Trim(rest, labelTrim)
	}
	return strings.Trim(before, labelTrim), strings.Trim(after, labelTrim)
}
