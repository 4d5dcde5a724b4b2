// Package cuesheet reads track lists into ordered track records.
//
// Two input shapes are supported: cue sheets (FILE / TRACK / TITLE /
// PERFORMER / INDEX 01 directives) and plain text lists where each line
// starts with a timestamp followed by "performer - title". Both parsers are
// best-effort: malformed lines become issues on the returned Sheet and the
// scan continues.
package cuesheet

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-cuesplit/internal/track"
)

// Kind identifies the format of a track list file.
type Kind int

const (
	// KindCue is a cue sheet (.cue).
	KindCue Kind = iota + 1
	// KindText is a plain timestamp list (.txt).
	KindText
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindCue:
		return "CUE"
	case KindText:
		return "TXT"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KindOf selects the parser for path from its extension (case-insensitive).
func KindOf(path string) (Kind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "cue":
		return KindCue, nil
	case "txt":
		return KindText, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedSheet, ext)
	}
}

// Sheet is the outcome of one parsing pass.
type Sheet struct {
	Kind      Kind
	Album     string // TITLE found before the first TRACK (cue only).
	Performer string // PERFORMER found before the first TRACK (cue only).
	MediaPath string // Supplied media path, or the cue FILE entry resolved against the cue directory.
	Tracks    []track.Record
	Issues    []track.Issue
}

// ErrorCount returns the number of recoverable problems met while parsing.
func (s Sheet) ErrorCount() int {
	return len(s.Issues)
}

// Parser parses track list files.
type Parser struct {
	logger   *slog.Logger
	charset  string
	readFile func(name string) ([]byte, error)
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger receiving parse warnings.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithCharset sets the charset used to decode files read by ParseFile.
// Empty means UTF-8 with a Windows-1252 fallback.
func WithCharset(name string) Option {
	return func(p *Parser) { p.charset = name }
}

// WithReadFile sets the function used to read files (for testing).
func WithReadFile(fn func(name string) ([]byte, error)) Option {
	return func(p *Parser) { p.readFile = fn }
}

// NewParser creates a Parser with the given options.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		logger:   slog.New(slog.DiscardHandler),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads, decodes and parses the track list at path, choosing the
// parser from the file extension. mediaPath, when not empty, takes
// precedence over any FILE entry of a cue sheet.
// Only unreadable or undecodable input is an error; malformed lines are
// reported through Sheet.Issues.
func (p *Parser) ParseFile(path, mediaPath string) (Sheet, error) {
	kind, err := KindOf(path)
	if err != nil {
		return Sheet{}, err
	}

	// #nosec G304 -- the user names the file to split
	data, err := p.readFile(path)
	if err != nil {
		return Sheet{}, fmt.Errorf("%w: %w", ErrReadSheet, err)
	}

	content, err := Decode(data, p.charset)
	if err != nil {
		return Sheet{}, err
	}

	if kind == KindText {
		sheet := p.ParseText(content)
		sheet.MediaPath = mediaPath
		return sheet, nil
	}
	return p.ParseCue(content, path, mediaPath), nil
}

// lines splits content like a text editor would (\n, \r\n or \r) and drops
// a leading byte-order mark.
func lines(content string) []string {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	out := strings.Split(content, "\n")
	if n := len(out); n > 0 && out[n-1] == "" {
		out = out[:n-1]
	}
	return out
}
