package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alnah/go-cuesplit/internal/cuesheet"
	"github.com/alnah/go-cuesplit/internal/timecode"
	"github.com/alnah/go-cuesplit/internal/track"
)

// TracksCmd creates the tracks command, which lists resolved tracks.
func TracksCmd(env *Env) *cobra.Command {
	var (
		media   string
		charset string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "tracks <sheet>",
		Short: "List the tracks of a cue sheet or timestamp list",
		Long: `Parse a .cue or .txt track list, resolve each track's length against
the next one and print the result. Problems met while parsing are logged
to stderr and counted; they never stop the listing.`,
		Example: `  cuesplit tracks album.cue
  cuesplit tracks tracklist.txt --json
  cuesplit tracks old.cue --charset shift_jis`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTracks(cmd.Context(), env, args[0], media, charset, asJSON)
		},
	}

	cmd.Flags().StringVarP(&media, "media", "m", "", "Media file (overrides the cue sheet's FILE entry)")
	cmd.Flags().StringVar(&charset, "charset", "", "Sheet encoding (default: UTF-8)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	return cmd
}

// trackJSON is one entry of the --json listing. Seconds are decimal;
// duration is null for the last, open-ended track.
type trackJSON struct {
	Index     int      `json:"index"`
	Performer string   `json:"performer"`
	Title     string   `json:"title"`
	Begin     float64  `json:"begin"`
	Duration  *float64 `json:"duration"`
}

type listingJSON struct {
	Media  string      `json:"media"`
	Errors int         `json:"errors"`
	Tracks []trackJSON `json:"tracks"`
}

func runTracks(ctx context.Context, env *Env, sheetPath, media, charset string, asJSON bool) error {
	if _, err := cuesheet.KindOf(sheetPath); err != nil {
		return fmt.Errorf("%w (should be .cue or .txt)", err)
	}
	if err := requireFile(sheetPath); err != nil {
		return err
	}

	cfg, err := env.ConfigLoader.Load(ctx)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}
	logger := cfg.NewLogger(env.Stderr)
	if charset == "" {
		charset = cfg.Charset
	}

	parser := cuesheet.NewParser(cuesheet.WithLogger(logger), cuesheet.WithCharset(charset))
	sheet, err := parser.ParseFile(sheetPath, media)
	if err != nil {
		return err
	}
	tracks, issues := track.Resolve(sheet.Tracks, logger)
	errCount := sheet.ErrorCount() + len(issues)

	if asJSON {
		return writeTracksJSON(env.Stdout, sheet.MediaPath, errCount, tracks)
	}
	if err := writeTracksTable(env.Stdout, tracks); err != nil {
		return err
	}
	fmt.Fprintf(env.Stderr, "%d tracks (errors: %d)\n", len(tracks), errCount)
	return nil
}

func writeTracksTable(w io.Writer, tracks []track.Resolved) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tBEGIN\tLENGTH\tPERFORMER\tTITLE")
	for i, t := range tracks {
		length := "open"
		if t.Bounded {
			length = timecode.FormatHMS(t.Duration)
		}
		fmt.Fprintf(tw, "%03d\t%s\t%s\t%s\t%s\n", i+1, timecode.FormatHMS(t.Begin()), length, t.Performer, t.Title)
	}
	return tw.Flush()
}

func writeTracksJSON(w io.Writer, media string, errCount int, tracks []track.Resolved) error {
	out := listingJSON{Media: media, Errors: errCount, Tracks: make([]trackJSON, 0, len(tracks))}
	for _, t := range tracks {
		tj := trackJSON{
			Index:     t.Index,
			Performer: t.Performer,
			Title:     t.Title,
			Begin:     t.Begin().Seconds(),
		}
		if t.Bounded {
			d := t.Duration.Seconds()
			tj.Duration = &d
		}
		out.Tracks = append(out.Tracks, tj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
