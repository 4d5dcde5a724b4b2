package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alnah/go-cuesplit/internal/config"
	"github.com/alnah/go-cuesplit/internal/format"
)

// CueCmd creates the cue command, which writes a fixed-interval cue sheet.
func CueCmd(env *Env) *cobra.Command {
	var (
		every  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "cue <media-file>",
		Short: "Write a cue sheet splitting media at a fixed interval",
		Long: `Probe the length of a media file and write a cue sheet with one track
per interval, the last one possibly shorter. Tracks are named trk1, trk2, ...

The sheet is written next to the media as <stem>_o<HEX>.cue unless --output
is given; a relative --output is placed in the configured output-dir.
Existing files are never overwritten.`,
		Example: `  cuesplit cue lecture.m4a --every 15m
  cuesplit cue mix.mp3 --every s90 -o mix.cue`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCue(cmd.Context(), env, args[0], every, output)
		},
	}

	cmd.Flags().StringVar(&every, "every", "", "Track length: 10m, 90s, 10 (minutes), s90 (seconds)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Cue file path (default: <media-dir>/<stem>_o<HEX>.cue)")
	_ = cmd.MarkFlagRequired("every")

	return cmd
}

// runCue validates its inputs before touching ffmpeg.
func runCue(ctx context.Context, env *Env, media, every, output string) error {
	interval, err := parseInterval(every)
	if err != nil {
		return err
	}
	if err := requireFile(media); err != nil {
		return err
	}

	cfg, err := env.ConfigLoader.Load(ctx)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	out := autoCuePath(media, env.Now())
	if output != "" {
		out = config.ResolveOutputPath(output, cfg.OutputDir, filepath.Base(out))
	}

	ffmpegPath, err := setupFFmpeg(ctx, env, cfg)
	if err != nil {
		return err
	}

	n, err := synthesizeCue(ctx, env, ffmpegPath, media, interval, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Wrote %d tracks of %s\n", n, format.DurationHuman(interval))
	fmt.Fprintln(env.Stdout, out)
	return nil
}
