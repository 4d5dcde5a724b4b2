package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-cuesplit/internal/timecode"
)

// ProbeCmd creates the probe command.
func ProbeCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <media-file>",
		Short: "Print the duration of a media file",
		Long: `Print the duration of a media file as H:MM:SS.fff followed by
the number of milliseconds, as read by ffmpeg.`,
		Example: `  cuesplit probe album.flac`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.Context(), env, args[0])
		},
	}
}

func runProbe(ctx context.Context, env *Env, media string) error {
	if err := requireFile(media); err != nil {
		return err
	}

	cfg, err := env.ConfigLoader.Load(ctx)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	ffmpegPath, err := setupFFmpeg(ctx, env, cfg)
	if err != nil {
		return err
	}

	d, err := env.Prober.Probe(ctx, ffmpegPath, media)
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Stdout, "%s %d\n", timecode.FormatHMS(d), d.Milliseconds())
	return nil
}
