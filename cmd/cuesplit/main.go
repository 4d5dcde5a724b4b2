package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-cuesplit/internal/cli"
	"github.com/alnah/go-cuesplit/internal/config"
	"github.com/alnah/go-cuesplit/internal/cuesheet"
	"github.com/alnah/go-cuesplit/internal/ffmpeg"
	"github.com/alnah/go-cuesplit/internal/interrupt"
	"github.com/alnah/go-cuesplit/internal/split"
	"github.com/alnah/go-cuesplit/internal/storage"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitExport     = 5
	ExitPublish    = 6
	ExitInterrupt  = interrupt.ExitInterrupt
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	// First Ctrl+C lets the current track finish, the second exits.
	handler, ctx := interrupt.NewHandler(context.Background())
	defer handler.Stop()

	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:   "cuesplit",
		Short: "Split audio and video files into tracks with ffmpeg",
		Long: `Split one media file into one file per track, driven by a cue sheet,
a plain timestamp list or a fixed interval. Tracks are stream-copied,
never re-encoded.`,
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Silence Cobra's default error/usage printing; we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.SplitCmd(env))
	rootCmd.AddCommand(cli.TracksCmd(env))
	rootCmd.AddCommand(cli.CueCmd(env))
	rootCmd.AddCommand(cli.ProbeCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	if handler.WasInterrupted() && err == nil {
		err = context.Canceled
	}
	if code := exitCode(err); code != ExitOK {
		handler.Stop()
		os.Exit(code)
	}
}

// exitCode maps errors to process exit codes. Export failures are checked
// before publish failures since a run can report both.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	// Cobra doesn't expose typed errors, so we check for known error message patterns.
	if isCobraUsageError(err) {
		return ExitUsage
	}

	if errors.Is(err, ffmpeg.ErrNotFound) || errors.Is(err, ffmpeg.ErrUnsupportedPlatform) ||
		errors.Is(err, ffmpeg.ErrChecksumMismatch) || errors.Is(err, ffmpeg.ErrDownloadFailed) ||
		errors.Is(err, ffmpeg.ErrUnknownVersion) {
		return ExitSetup
	}

	if errors.Is(err, split.ErrExportFailed) {
		return ExitExport
	}

	if errors.Is(err, storage.ErrPublishFailed) {
		return ExitPublish
	}

	if errors.Is(err, cli.ErrNoCueSheet) || errors.Is(err, cli.ErrNoMediaFile) ||
		errors.Is(err, cli.ErrFileNotFound) || errors.Is(err, cli.ErrUnsupportedSheet) ||
		errors.Is(err, cli.ErrOutputDirNotFound) || errors.Is(err, cli.ErrInvalidDuration) ||
		errors.Is(err, cli.ErrOutputExists) || errors.Is(err, cli.ErrInvalidConfigValue) ||
		errors.Is(err, cuesheet.ErrUnknownCharset) || errors.Is(err, cuesheet.ErrReadSheet) ||
		errors.Is(err, cuesheet.ErrInvalidInterval) || errors.Is(err, ffmpeg.ErrProbeFailed) ||
		errors.Is(err, split.ErrInvalidOptions) || errors.Is(err, storage.ErrInvalidTarget) ||
		errors.Is(err, config.ErrInvalid) {
		return ExitValidation
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// These patterns are stable across Cobra versions (tested with v1.8+).
var cobraUsageErrorPatterns = []string{
	"required flag",          // Missing required flag
	"unknown flag",           // Flag doesn't exist
	"unknown shorthand",      // Short flag doesn't exist
	"unknown command",        // Subcommand doesn't exist
	"flag needs an argument", // Flag provided without value
	"invalid argument",       // Invalid flag value type
	"accepts ",               // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",      // Too few arguments
	"requires at most",       // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
