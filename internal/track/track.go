// Package track holds the track records produced by the sheet parsers and
// the boundary calculation that turns start offsets into (begin, duration)
// pairs for export.
package track

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alnah/go-cuesplit/internal/timecode"
)

// Record is one parsed track, before its duration is known.
type Record struct {
	Index     int           // Zero-based position assigned by the parser.
	Title     string        // May be empty.
	Performer string        // May be empty.
	Start     time.Duration // Offset in the source media; zero if the sheet gave none.
}

// String returns a human-readable representation for logging.
func (r Record) String() string {
	return fmt.Sprintf("track %d: [%s] - [%s] @ %s",
		r.Index+1, r.Performer, r.Title, timecode.FormatHMS(r.Start))
}

// Resolved is a Record with its length relative to the next record.
// Bounded is false only for the last track, which runs to the end of the media.
type Resolved struct {
	Record
	Duration time.Duration
	Bounded  bool
}

// Begin returns the start offset in the source media.
func (r Resolved) Begin() time.Duration {
	return r.Start
}

// End returns the end offset, or false when the track is open-ended.
func (r Resolved) End() (time.Duration, bool) {
	if !r.Bounded {
		return 0, false
	}
	return r.Start + r.Duration, true
}

// Resolve computes each record's duration as the gap to its successor in
// the given order. The last record is unbounded. A record whose successor
// starts earlier is dropped and reported as a NegativeDuration issue; the
// following records are still resolved against their own successors.
// A nil logger discards log output.
func Resolve(records []Record, logger *slog.Logger) ([]Resolved, []Issue) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	resolved := make([]Resolved, 0, len(records))
	var issues []Issue

	for i, rec := range records {
		if i+1 == len(records) {
			resolved = append(resolved, Resolved{Record: rec})
			break
		}

		d := records[i+1].Start - rec.Start
		if d < 0 {
			issue := Issue{
				Kind:    NegativeDuration,
				Track:   rec.Index,
				Message: fmt.Sprintf("negative length for track %d detected, ignoring", rec.Index+1),
			}
			issues = append(issues, issue)
			logger.Error(issue.Message,
				"track", rec.Index+1,
				"performer", rec.Performer,
				"title", rec.Title,
				"start", timecode.FormatHMS(rec.Start),
				"next", timecode.FormatHMS(records[i+1].Start))
			continue
		}

		resolved = append(resolved, Resolved{Record: rec, Duration: d, Bounded: true})
	}

	return resolved, issues
}
