package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// DefaultStopTimeout is how long a stopped ffmpeg may take to finalize
// its output before it is killed.
const DefaultStopTimeout = 10 * time.Second

// runOutputFn runs a command and returns its stderr.
type runOutputFn func(ctx context.Context, path string, args []string) (string, error)

// runFn runs a command to completion and returns its exit code.
type runFn func(ctx context.Context, path string, args []string, stdout, stderr io.Writer) (int, error)

// Executor runs ffmpeg subprocesses.
type Executor struct {
	runOutput   runOutputFn
	run         runFn
	stopTimeout time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRunOutput replaces the stderr-capturing runner (for testing).
func WithRunOutput(fn runOutputFn) ExecutorOption {
	return func(e *Executor) { e.runOutput = fn }
}

// WithRun replaces the exit-code runner (for testing).
func WithRun(fn runFn) ExecutorOption {
	return func(e *Executor) { e.run = fn }
}

// WithStopTimeout sets the grace period granted after a stop request.
func WithStopTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.stopTimeout = d }
}

// NewExecutor creates an Executor that spawns real processes.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		runOutput:   defaultRunOutput,
		stopTimeout: DefaultStopTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.run == nil {
		timeout := e.stopTimeout
		e.run = func(ctx context.Context, path string, args []string, stdout, stderr io.Writer) (int, error) {
			return runGraceful(ctx, path, args, stdout, stderr, timeout)
		}
	}
	return e
}

// RunOutput runs ffmpeg and returns what it wrote to stderr, where it
// prints banners, stream info and errors. The output is returned even
// when the exit status is non-zero.
func (e *Executor) RunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	return e.runOutput(ctx, ffmpegPath, args)
}

// Run runs ffmpeg to completion and returns its exit code. A non-zero
// exit is not an error; err is set only when the process could not be
// started or had to be killed.
//
// Cancelling ctx asks ffmpeg to stop by writing 'q' to its stdin, which
// lets it finalize the file being written.
func (e *Executor) Run(ctx context.Context, ffmpegPath string, args []string, stdout, stderr io.Writer) (int, error) {
	return e.run(ctx, ffmpegPath, args, stdout, stderr)
}

func defaultRunOutput(ctx context.Context, ffmpegPath string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}

// runGraceful starts the command with a stdin pipe so that a cancelled
// ctx can be turned into ffmpeg's interactive "q" command, then kills the
// process if it has not exited after timeout. This works the same on
// every OS, unlike signals.
func runGraceful(ctx context.Context, path string, args []string, stdout, stderr io.Writer, timeout time.Duration) (int, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return -1, fmt.Errorf("create stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return -1, fmt.Errorf("start ffmpeg: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return exitStatus(err)
	case <-ctx.Done():
	}

	_, _ = io.WriteString(stdin, "q")
	_ = stdin.Close()

	select {
	case err := <-done:
		return exitStatus(err)
	case <-time.After(timeout):
		_ = cmd.Process.Kill()
		<-done
		return -1, fmt.Errorf("%w: killed after %v", ErrTimeout, timeout)
	}
}

// exitStatus turns the result of cmd.Wait into an exit code.
func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, fmt.Errorf("ffmpeg: %w", err)
}
