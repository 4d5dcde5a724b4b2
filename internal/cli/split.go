package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-cuesplit/internal/config"
	"github.com/alnah/go-cuesplit/internal/cuesheet"
	"github.com/alnah/go-cuesplit/internal/format"
	"github.com/alnah/go-cuesplit/internal/split"
	"github.com/alnah/go-cuesplit/internal/storage"
	"github.com/alnah/go-cuesplit/internal/track"
)

// splitOptions holds the flags of the split command.
type splitOptions struct {
	sheet     string
	media     string
	outputDir string
	every     string
	charset   string
	format    string
	album     string
	publish   string

	quiet         bool
	stripMetadata bool
	pauseOnError  bool
	step          bool
	noNames       bool
	dryRun        bool
}

// SplitCmd creates the split command.
// The env parameter provides injectable dependencies for testing.
func SplitCmd(env *Env) *cobra.Command {
	var o splitOptions

	cmd := &cobra.Command{
		Use:   "split [sheet] [media]",
		Short: "Split a media file into tracks",
		Long: `Split one audio or video file into one file per track.

Tracks come from a cue sheet (.cue), a plain list of "timestamp performer - title"
lines (.txt), or a fixed interval (--every). Each track is stream-copied by ffmpeg,
without re-encoding, into a fresh out_<HEX> directory next to the sheet unless
--output-dir names an existing directory.

Loose arguments are assigned by extension: the first .cue or .txt is the sheet,
the first other file is the media. A cue sheet's FILE entry is used when no media
is given; if that file is missing, a sibling with a similar name is picked.

Press Ctrl+C once to finish the current track and stop, twice to abort.`,
		Example: `  cuesplit split album.cue
  cuesplit split tracklist.txt mix.mp3 --format mka
  cuesplit split -m podcast.m4a --every 10m --no-names
  cuesplit split album.cue --dry-run
  cuesplit split album.cue --publish s3://music/albums`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd.Context(), env, args, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.sheet, "cue", "c", "", "Track list: .cue sheet or .txt timestamp list")
	f.StringVarP(&o.media, "media", "m", "", "Media file to split (default: the cue sheet's FILE entry)")
	f.StringVarP(&o.outputDir, "output-dir", "o", "", "Existing output directory (default: new out_<HEX> directory)")
	f.StringVar(&o.every, "every", "", "Split every interval instead of using a sheet: 10m, 90s, 10 (minutes), s90 (seconds)")
	f.StringVar(&o.charset, "charset", "", "Sheet encoding, e.g. shift_jis, windows-1252 (default: UTF-8)")
	f.StringVar(&o.format, "format", "", "Output file extension, e.g. mka, flac (default: the media's)")
	f.StringVar(&o.album, "album", "", "Album tag (default: the cue sheet's TITLE)")
	f.StringVar(&o.publish, "publish", "", "Copy tracks to a directory or upload them to s3://bucket/prefix")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "Hide ffmpeg output unless a track fails")
	f.BoolVar(&o.stripMetadata, "strip-metadata", false, "Drop source metadata instead of tagging tracks")
	f.BoolVar(&o.pauseOnError, "pause-on-error", false, "Wait for Enter after a failed track")
	f.BoolVar(&o.step, "step", false, "Wait for Enter after each track")
	f.BoolVar(&o.noNames, "no-names", false, "Name files by position only")
	f.BoolVar(&o.dryRun, "dry-run", false, "Show the preview and stop")

	return cmd
}

// runSplit executes the split pipeline.
// Order: inputs -> (auto cue) -> sheet -> output dir -> parse -> preview -> media -> export -> publish.
func runSplit(ctx context.Context, env *Env, args []string, o splitOptions) error {
	assignArgs(env.Stderr, args, &o.sheet, &o.media)

	cfg, err := env.ConfigLoader.Load(ctx)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	logger := cfg.NewLogger(env.Stderr)
	now := env.Now()

	if strings.HasPrefix(o.publish, "s3://") {
		if _, _, err := storage.ParseS3URL(o.publish); err != nil {
			return err
		}
	}

	// === AUTO CUE ===

	var ffmpegPath string
	if o.every != "" {
		interval, err := parseInterval(o.every)
		if err != nil {
			return err
		}
		if o.media == "" {
			return fmt.Errorf("%w: --every needs a media file (see --media FILE)", ErrNoMediaFile)
		}
		if err := requireFile(o.media); err != nil {
			return err
		}
		if ffmpegPath, err = setupFFmpeg(ctx, env, cfg); err != nil {
			return err
		}

		o.sheet = autoCuePath(o.media, now)
		n, err := synthesizeCue(ctx, env, ffmpegPath, o.media, interval, o.sheet)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "New cue file: [%s], %d tracks of %s\n",
			format.Tail(o.sheet, previewWidth), n, format.DurationHuman(interval))
	}

	// === SHEET ===

	if o.sheet == "" {
		return fmt.Errorf("%w (see --cue FILE)", ErrNoCueSheet)
	}
	kind, err := cuesheet.KindOf(o.sheet)
	if err != nil {
		return fmt.Errorf("%w (should be .cue or .txt)", err)
	}
	if err := requireFile(o.sheet); err != nil {
		return err
	}

	outDir, create, err := resolveOutputDir(o.outputDir, cfg.OutputDir, o.sheet, now)
	if err != nil {
		return err
	}

	charset := o.charset
	if charset == "" {
		charset = cfg.Charset
	}
	parser := cuesheet.NewParser(cuesheet.WithLogger(logger), cuesheet.WithCharset(charset))

	fmt.Fprintf(env.Stderr, "Parsing %s file...\n", kind)
	sheet, err := parser.ParseFile(o.sheet, o.media)
	if err != nil {
		return err
	}
	media := resolveMedia(logger, o.media, sheet.MediaPath)

	tracks, issues := track.Resolve(sheet.Tracks, logger)
	errCount := sheet.ErrorCount() + len(issues)

	printInputs(env.Stderr, o.sheet, media, outDir)
	printPreview(env.Stderr, tracks)

	if media == "" {
		return fmt.Errorf("%w (see --media FILE)", ErrNoMediaFile)
	}
	if err := requireFile(media); err != nil {
		return err
	}

	if o.dryRun {
		fmt.Fprintf(env.Stderr, "\nDry run, nothing exported. (errors: %d)\n", errCount)
		return nil
	}

	// === EXPORT ===

	if create {
		fmt.Fprintln(env.Stderr, "Creating output dir.")
		if err := os.MkdirAll(outDir, 0o750); err != nil { // #nosec G301 -- user output dir
			return fmt.Errorf("cannot create output directory: %w", err)
		}
	}

	if ffmpegPath == "" {
		if ffmpegPath, err = setupFFmpeg(ctx, env, cfg); err != nil {
			return err
		}
	}

	ext := o.format
	if ext == "" {
		ext = cfg.Format
	}
	album := o.album
	if album == "" {
		album = sheet.Album
	}

	exporter := env.ExporterFactory.NewExporter(ffmpegPath, logger, env.Stdin, env.Stderr)
	report, err := exporter.Export(ctx, media, tracks, split.Options{
		OutputDir:     outDir,
		Format:        ext,
		Album:         album,
		Quiet:         o.quiet,
		StripMetadata: o.stripMetadata,
		PauseOnError:  o.pauseOnError,
		Step:          o.step,
		NoNames:       o.noNames,
	})
	if err != nil {
		return err
	}
	errCount += report.Failed()

	// === PUBLISH ===

	var publishErr error
	if o.publish != "" && !report.Interrupted {
		publishErr = publish(ctx, env, cfg, logger, o.publish, report.Outputs())
	}

	fmt.Fprintf(env.Stderr, "Done. (errors: %d)\n", errCount)

	if report.Interrupted {
		return fmt.Errorf("export interrupted, %d of %d tracks skipped: %w", report.Skipped, len(tracks), context.Canceled)
	}
	var exportErr error
	if n := report.Failed(); n > 0 {
		exportErr = fmt.Errorf("%w: %d of %d tracks", split.ErrExportFailed, n, len(tracks))
	}
	return errors.Join(exportErr, publishErr)
}

// resolveMedia picks the media to split: the given one as is, otherwise
// the sheet's FILE entry or, when that is missing, a similar sibling.
func resolveMedia(logger *slog.Logger, given, fromSheet string) string {
	if given != "" || fromSheet == "" {
		return given
	}
	found, ok := cuesheet.LocateMedia(fromSheet)
	if !ok {
		return fromSheet
	}
	if found != fromSheet {
		logger.Warn("media named by the cue sheet is missing, using a similar file",
			"named", fromSheet,
			"using", found)
	}
	return found
}

// publish sends the exported files to target.
func publish(ctx context.Context, env *Env, cfg config.Config, logger *slog.Logger, target string, files []string) error {
	if len(files) == 0 {
		return nil
	}
	p, err := env.PublisherFactory.NewPublisher(ctx, target, cfg, logger)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrPublishFailed, err)
	}

	fmt.Fprintf(env.Stderr, "Publishing %d files to %s...\n", len(files), target)
	published, err := storage.PublishAll(ctx, p, files)
	fmt.Fprintf(env.Stderr, "Published %d/%d files (%s)\n", len(published), len(files), format.Size(totalSize(files)))
	return err
}

// totalSize sums the sizes of the files that can be read.
func totalSize(files []string) int64 {
	var n int64
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			n += info.Size()
		}
	}
	return n
}
