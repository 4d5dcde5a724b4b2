package track

import "fmt"

// IssueKind classifies a recoverable problem found while building the
// track list. Issues never abort parsing; they are counted and reported.
type IssueKind int

const (
	// ParseWarning marks a line that should carry a timestamp but does not,
	// or a cue INDEX 01 line with malformed time syntax.
	ParseWarning IssueKind = iota + 1
	// NegativeDuration marks a track dropped because its successor starts earlier.
	NegativeDuration
)

// String returns the string representation of the IssueKind.
func (k IssueKind) String() string {
	switch k {
	case ParseWarning:
		return "ParseWarning"
	case NegativeDuration:
		return "NegativeDuration"
	default:
		return fmt.Sprintf("IssueKind(%d)", int(k))
	}
}

// Issue is one recoverable problem.
type Issue struct {
	Kind    IssueKind
	Line    int // 1-based source line, 0 when not tied to a line.
	Track   int // Record index, meaningful for NegativeDuration.
	Message string
}

// String formats the issue for summaries.
func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%s: line %d: %s", i.Kind, i.Line, i.Message)
	}
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}
