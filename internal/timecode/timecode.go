// Package timecode converts the time offsets found in track lists into
// time.Duration values and back.
//
// Two notations coexist and are deliberately kept apart:
//   - HMS: "H:MM:SS.fff" down to "M:SS", where the optional fraction is milliseconds.
//   - Cue INDEX: "MM:SS:FF", where the third field counts frames at 75 per second.
//
// "1:02:03" therefore means one hour for ParseHMS and one minute plus
// three frames for ParseCueIndex. Pick the entry point matching the source.
package timecode

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

// FramesPerSecond is the cue sheet sub-second unit.
const FramesPerSecond = 75

// maxMillis is the upper bound applied to the millisecond component.
const maxMillis = 999

// hmsPattern captures unit1, ":unit2", an optional ":unit3" or ".fraction",
// and an optional trailing ".fraction".
var hmsPattern = regexp.MustCompile(`(\d+)(:\d+)(?:([:.]\d+)(\.\d+)?)?`)

// cueIndexPattern finds the first run of three or more colon-separated
// numbers; its last three fields are MM:SS:FF.
var cueIndexPattern = regexp.MustCompile(`\d+(?::\d+){2,}`)

// Match is the result of scanning text for an HMS timestamp.
// The zero Match means nothing was found.
type Match struct {
	// Parts holds the matched components in order, separators included,
	// e.g. ["1", ":04", ":54", ".010"] or ["3", ":24"].
	Parts []string
	// Start and End are byte offsets of the match within the scanned text.
	Start, End int
}

// Found reports whether the scan matched a timestamp.
func (m Match) Found() bool {
	return len(m.Parts) > 0
}

// Timestamp is a normalized HMS value.
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
	Millis  int
}

// Duration folds the components into a single offset.
func (t Timestamp) Duration() time.Duration {
	return time.Duration(t.Hours)*time.Hour +
		time.Duration(t.Minutes)*time.Minute +
		time.Duration(t.Seconds)*time.Second +
		time.Duration(t.Millis)*time.Millisecond
}

// String renders the timestamp as H:MM:SS.fff.
func (t Timestamp) String() string {
	return fmt.Sprintf("%d:%02d:%02d.%03d", t.Hours, t.Minutes, t.Seconds, t.Millis)
}

// Find returns the first HMS timestamp anywhere in s.
func Find(s string) Match {
	loc := hmsPattern.FindStringSubmatchIndex(s)
	if loc == nil {
		return Match{}
	}
	m := Match{Start: loc[0], End: loc[1]}
	for g := 1; g < len(loc)/2; g++ {
		if loc[2*g] < 0 {
			continue
		}
		m.Parts = append(m.Parts, s[loc[2*g]:loc[2*g+1]])
	}
	return m
}

// Normalize turns a Match into a Timestamp: the fraction is read as
// milliseconds (".33" is 330ms), missing leading units are zero, and the
// millisecond component is capped at 999.
func Normalize(m Match) (Timestamp, error) {
	if !m.Found() {
		return Timestamp{}, ErrNoTimestamp
	}

	parts := slices.Clone(m.Parts)
	last := parts[len(parts)-1]
	if strings.HasPrefix(last, ".") {
		parts[len(parts)-1] = "." + millisDigits(last[1:])
	} else {
		parts = append(parts, ".000")
	}
	for len(parts) < 4 {
		parts = slices.Insert(parts, 0, "0")
	}

	var nums [4]int
	for i, p := range parts[:4] {
		n, err := strconv.Atoi(strings.TrimLeft(p, ":."))
		if err != nil {
			return Timestamp{}, fmt.Errorf("%w: component %q", ErrOutOfRange, p)
		}
		nums[i] = n
	}

	ts := Timestamp{
		Hours:   nums[0],
		Minutes: nums[1],
		Seconds: nums[2],
		Millis:  min(nums[3], maxMillis),
	}
	if _, err := sum(
		term{ts.Hours, time.Hour},
		term{ts.Minutes, time.Minute},
		term{ts.Seconds, time.Second},
		term{ts.Millis, time.Millisecond},
	); err != nil {
		return Timestamp{}, fmt.Errorf("%w: %s", err, ts)
	}
	return ts, nil
}

// term is a count of some unit.
type term struct {
	n    int
	unit time.Duration
}

// sum adds the terms, failing with ErrOutOfRange instead of wrapping past
// the largest Duration.
func sum(terms ...term) (time.Duration, error) {
	var total time.Duration
	for _, t := range terms {
		if t.n == 0 || t.unit == 0 {
			continue
		}
		if t.n < 0 || int64(t.n) > math.MaxInt64/int64(t.unit) {
			return 0, ErrOutOfRange
		}
		d := time.Duration(t.n) * t.unit
		if d > math.MaxInt64-total {
			return 0, ErrOutOfRange
		}
		total += d
	}
	return total, nil
}

// millisDigits keeps at most three fraction digits and right-pads to three.
func millisDigits(frac string) string {
	if len(frac) > 3 {
		frac = frac[:3]
	}
	return frac + strings.Repeat("0", 3-len(frac))
}

// ParseHMS extracts the first HMS timestamp in s.
// Returns ErrNoTimestamp when s contains none; callers decide whether
// that matters.
func ParseHMS(s string) (time.Duration, error) {
	ts, err := Normalize(Find(s))
	if err != nil {
		return 0, err
	}
	return ts.Duration(), nil
}

// ParseCueIndex reads the first MM:SS:FF value in s, as found after the
// directive of a cue sheet "INDEX 01" line. Text around the value is
// ignored; when more than three fields are chained ("0:06:03:00") the
// last three are used. Minutes are not limited to 59.
func ParseCueIndex(s string) (time.Duration, error) {
	m := cueIndexPattern.FindString(s)
	if m == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCueIndex, strings.TrimSpace(s))
	}
	fields := strings.Split(m, ":")
	fields = fields[len(fields)-3:]

	var nums [3]int
	for i, g := range fields {
		n, err := strconv.Atoi(g)
		if err != nil {
			return 0, fmt.Errorf("%w: component %q", ErrOutOfRange, g)
		}
		nums[i] = n
	}

	whole, err := sum(term{nums[0], time.Minute}, term{nums[1], time.Second})
	if err != nil {
		return 0, fmt.Errorf("%w: %q", err, m)
	}
	frames, err := sum(term{nums[2], time.Second})
	if err != nil {
		return 0, fmt.Errorf("%w: %q", err, m)
	}
	total, err := sum(term{1, whole}, term{1, frames / FramesPerSecond})
	if err != nil {
		return 0, fmt.Errorf("%w: %q", err, m)
	}
	return total, nil
}

// FromDuration splits d into HMS components, truncating below the millisecond.
// Negative durations are treated as zero.
func FromDuration(d time.Duration) Timestamp {
	if d < 0 {
		d = 0
	}
	ms := int64(d / time.Millisecond)
	return Timestamp{
		Hours:   int(ms / 3_600_000),
		Minutes: int(ms / 60_000 % 60),
		Seconds: int(ms / 1000 % 60),
		Millis:  int(ms % 1000),
	}
}

// FormatHMS renders d as H:MM:SS.fff, e.g. 203.28s -> "0:03:23.280".
func FormatHMS(d time.Duration) string {
	return FromDuration(d).String()
}

// FormatCueIndex renders d as a cue INDEX value M:SS:FF with hours folded
// into minutes, e.g. 3725s -> "62:05:00".
func FormatCueIndex(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	whole := d / time.Second
	frames := (d % time.Second) * FramesPerSecond / time.Second
	return fmt.Sprintf("%d:%02d:%02d", whole/60, whole%60, frames)
}

// Seconds is a convenience for the decimal-seconds form used on ffmpeg
// command lines, e.g. 90.5s -> "90.500000".
func Seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}
