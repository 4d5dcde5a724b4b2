package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-cuesplit/internal/config"
	"github.com/alnah/go-cuesplit/internal/ffmpeg"
)

func TestRunCue(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	media := writeFile(t, dir, "lecture.m4a", "fake audio")
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env, mocks := testEnv(withStdout(stdout), withStderr(stderr))
	mocks.prober.ProbeFunc = func(context.Context, string, string) (time.Duration, error) {
		return 45*time.Minute + 300*time.Millisecond, nil
	}

	if err := RunCue(context.Background(), env, media, "15", ""); err != nil {
		t.Fatalf("RunCue() unexpected error: %v", err)
	}

	want := filepath.Join(dir, "lecture_o6977797C.cue")
	if got := strings.TrimSpace(stdout.String()); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("cue not written: %v", err)
	}
	if n := strings.Count(string(data), "TRACK "); n != 3 {
		t.Errorf("cue has %d tracks, want 3:\n%s", n, data)
	}
	if !strings.Contains(stderr.String(), "Wrote 3 tracks of 15m") {
		t.Errorf("stderr = %q, want summary", stderr.String())
	}
}

func TestRunCue_OutputUnderConfiguredDir(t *testing.T) {
	t.Parallel()

	media := writeFile(t, t.TempDir(), "mix.mp3", "fake audio")
	outDir := t.TempDir()
	env, _ := testEnv(withConfig(config.Config{OutputDir: outDir}))

	if err := RunCue(context.Background(), env, media, "s90", "mix.cue"); err != nil {
		t.Fatalf("RunCue() unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "mix.cue")); err != nil {
		t.Errorf("cue not written under output-dir: %v", err)
	}
}

func TestRunCue_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	media := writeFile(t, dir, "a.mp3", "fake audio")
	existing := writeFile(t, dir, "taken.cue", "old")

	tests := []struct {
		name    string
		media   string
		every   string
		output  string
		probe   time.Duration
		wantErr error
	}{
		{"bad interval", media, "0", "", time.Minute, ErrInvalidDuration},
		{"missing media", filepath.Join(dir, "none.mp3"), "1m", "", time.Minute, ErrFileNotFound},
		{"empty media", media, "1m", filepath.Join(dir, "empty.cue"), 400 * time.Millisecond, ffmpeg.ErrProbeFailed},
		{"existing output", media, "1m", existing, time.Minute, ErrOutputExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, mocks := testEnv()
			mocks.prober.ProbeFunc = func(context.Context, string, string) (time.Duration, error) {
				return tt.probe, nil
			}
			err := RunCue(context.Background(), env, tt.media, tt.every, tt.output)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RunCue() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
