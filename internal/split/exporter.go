// Package split exports resolved tracks from a source media file, one
// ffmpeg stream-copy per track, strictly in order.
package split

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/alnah/go-cuesplit/internal/timecode"
	"github.com/alnah/go-cuesplit/internal/track"
)

// runner executes ffmpeg and reports its exit code.
// *ffmpeg.Executor satisfies it.
type runner interface {
	Run(ctx context.Context, ffmpegPath string, args []string, stdout, stderr io.Writer) (int, error)
}

// Options controls an export run.
type Options struct {
	OutputDir     string `validate:"required"`
	Format        string `validate:"omitempty,alphanum,max=10"` // Output extension; empty keeps the source's.
	Album         string
	Quiet         bool // Hide ffmpeg output unless a track fails.
	StripMetadata bool // Drop source metadata instead of tagging tracks.
	PauseOnError  bool // Wait for Enter after a failed track.
	Step          bool // Wait for Enter after each track.
	NoNames       bool // Omit performer and title from file names.
}

// Result is the outcome of one track.
type Result struct {
	Position int
	Track    track.Resolved
	Output   string
	ExitCode int
	Err      error // Set when ffmpeg could not be run at all.
}

// OK reports whether the track was written.
func (r Result) OK() bool {
	return r.Err == nil && r.ExitCode == 0
}

// Report summarizes an export run.
type Report struct {
	Results     []Result
	Skipped     int  // Tracks not attempted after an interruption.
	Interrupted bool // The run was stopped through its context.
}

// Failed returns the number of tracks that were attempted and failed.
func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// Outputs returns the files written successfully, in track order.
func (r Report) Outputs() []string {
	var out []string
	for _, res := range r.Results {
		if res.OK() {
			out = append(out, res.Output)
		}
	}
	return out
}

// Exporter runs ffmpeg once per track.
type Exporter struct {
	runner     runner
	ffmpegPath string
	logger     *slog.Logger
	stderr     io.Writer
	stdin      *bufio.Reader
	validate   *validator.Validate
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithStderr sets the writer for progress lines and ffmpeg output.
func WithStderr(w io.Writer) Option {
	return func(e *Exporter) { e.stderr = w }
}

// WithStdin sets the reader consulted by the pause and step prompts.
func WithStdin(r io.Reader) Option {
	return func(e *Exporter) { e.stdin = bufio.NewReader(r) }
}

// NewExporter creates an Exporter running the ffmpeg binary at ffmpegPath.
func NewExporter(r runner, ffmpegPath string, opts ...Option) *Exporter {
	e := &Exporter{
		runner:     r,
		ffmpegPath: ffmpegPath,
		logger:     slog.New(slog.DiscardHandler),
		stderr:     os.Stderr,
		stdin:      bufio.NewReader(os.Stdin),
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes every track of tracks from source into opts.OutputDir.
//
// A failing track is counted and the run continues with the next one.
// When ctx is cancelled the running ffmpeg is asked to finish its file,
// the remaining tracks are skipped and Report.Interrupted is set; this is
// not an error. The returned error is non-nil only for invalid options.
func (e *Exporter) Export(ctx context.Context, source string, tracks []track.Resolved, opts Options) (Report, error) {
	if err := e.validate.Struct(opts); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}

	ext := Extension(opts.Format, source)
	var rep Report

	for i, t := range tracks {
		if ctx.Err() != nil {
			rep.Interrupted = true
			rep.Skipped = len(tracks) - i
			break
		}

		cut := Cut{
			Source:        source,
			Output:        OutputPath(opts.OutputDir, i, t.Record, ext, opts.NoNames),
			Muxer:         Muxer(ext),
			Position:      i,
			Track:         t,
			Album:         opts.Album,
			StripMetadata: opts.StripMetadata,
		}

		if t.Bounded && t.Duration == 0 {
			e.logger.Warn("zero-length track, ffmpeg will write an empty file",
				"track", i+1,
				"start", timecode.FormatHMS(t.Start),
				"output", cut.Output)
		}

		fmt.Fprintf(e.stderr, "%d/%d Running ffmpeg... %s\n", i+1, len(tracks), cut.Output)
		res := e.ExportTrack(ctx, cut, opts.Quiet)
		rep.Results = append(rep.Results, res)

		if !res.OK() {
			e.logger.Error("ffmpeg failed",
				"track", i+1,
				"code", res.ExitCode,
				"errors", rep.Failed(),
				"output", res.Output,
				"err", res.Err)
			if opts.PauseOnError {
				e.wait("Continue...")
			}
		}
		if opts.Step && (res.OK() || !opts.PauseOnError) {
			e.wait("Continue...")
		}
	}

	if ctx.Err() != nil && !rep.Interrupted {
		rep.Interrupted = true
	}
	return rep, nil
}

// ExportTrack runs ffmpeg once for cut and returns its outcome. Quiet
// runs buffer ffmpeg's output and log it only when the track fails.
func (e *Exporter) ExportTrack(ctx context.Context, cut Cut, quiet bool) Result {
	args := cut.Args()
	e.logger.Debug("running ffmpeg", "path", e.ffmpegPath, "args", strings.Join(args, " "))

	out := e.stderr
	var buf bytes.Buffer
	if quiet {
		out = &buf
	}

	code, err := e.runner.Run(ctx, e.ffmpegPath, args, out, out)
	res := Result{Position: cut.Position, Track: cut.Track, Output: cut.Output, ExitCode: code, Err: err}
	if quiet && !res.OK() && buf.Len() > 0 {
		e.logger.Warn("ffmpeg output", "track", cut.Position+1, "stderr", strings.TrimSpace(buf.String()))
	}
	return res
}

// wait prints prompt and blocks until a line (or EOF) is read.
func (e *Exporter) wait(prompt string) {
	fmt.Fprintln(e.stderr, prompt)
	_, _ = e.stdin.ReadString('\n')
}
