package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/alnah/go-cuesplit/internal/config"
	"github.com/alnah/go-cuesplit/internal/ffmpeg"
	"github.com/alnah/go-cuesplit/internal/split"
	"github.com/alnah/go-cuesplit/internal/storage"
	"github.com/alnah/go-cuesplit/internal/track"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have production defaults via DefaultEnv(). Env must not be nil
// when passed to command functions.
type Env struct {
	// I/O and environment
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	LookupEnv func(string) (string, bool)
	Now       func() time.Time

	// Factories for domain objects
	ConfigLoader     ConfigLoader
	FFmpegResolver   FFmpegResolver
	Prober           Prober
	ExporterFactory  ExporterFactory
	PublisherFactory PublisherFactory
}

// ConfigLoader loads the effective configuration.
type ConfigLoader interface {
	Load(ctx context.Context) (config.Config, error)
}

// FFmpegResolver finds the ffmpeg binary and reads its version.
type FFmpegResolver interface {
	Resolve(ctx context.Context, configuredPath string) (string, error)
	CheckVersion(ctx context.Context, ffmpegPath string) (string, error)
}

// Prober measures media duration.
type Prober interface {
	Probe(ctx context.Context, ffmpegPath, mediaPath string) (time.Duration, error)
}

// Exporter writes resolved tracks out of a source media file.
type Exporter interface {
	Export(ctx context.Context, source string, tracks []track.Resolved, opts split.Options) (split.Report, error)
}

// ExporterFactory creates exporters bound to an ffmpeg binary.
type ExporterFactory interface {
	NewExporter(ffmpegPath string, logger *slog.Logger, stdin io.Reader, stderr io.Writer) Exporter
}

// PublisherFactory creates publishers for a --publish target.
type PublisherFactory interface {
	NewPublisher(ctx context.Context, target string, cfg config.Config, logger *slog.Logger) (storage.Publisher, error)
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStdin sets the reader used by interactive prompts.
func WithStdin(r io.Reader) EnvOption {
	return func(e *Env) { e.Stdin = r }
}

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) { e.Stdout = w }
}

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) { e.Stderr = w }
}

// WithLookupEnv sets the environment variable lookup.
func WithLookupEnv(fn func(string) (string, bool)) EnvOption {
	return func(e *Env) { e.LookupEnv = fn }
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) { e.Now = fn }
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) { e.ConfigLoader = l }
}

// WithFFmpegResolver sets the FFmpeg resolver.
func WithFFmpegResolver(r FFmpegResolver) EnvOption {
	return func(e *Env) { e.FFmpegResolver = r }
}

// WithProber sets the duration prober.
func WithProber(p Prober) EnvOption {
	return func(e *Env) { e.Prober = p }
}

// WithExporterFactory sets the exporter factory.
func WithExporterFactory(f ExporterFactory) EnvOption {
	return func(e *Env) { e.ExporterFactory = f }
}

// WithPublisherFactory sets the publisher factory.
func WithPublisherFactory(f PublisherFactory) EnvOption {
	return func(e *Env) { e.PublisherFactory = f }
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stdin:            os.Stdin,
		Stdout:           os.Stdout,
		Stderr:           os.Stderr,
		LookupEnv:        os.LookupEnv,
		Now:              time.Now,
		ConfigLoader:     &defaultConfigLoader{},
		FFmpegResolver:   &defaultFFmpegResolver{},
		Prober:           &defaultProber{},
		ExporterFactory:  &defaultExporterFactory{},
		PublisherFactory: &defaultPublisherFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

type defaultConfigLoader struct{}

func (defaultConfigLoader) Load(ctx context.Context) (config.Config, error) {
	return config.Load(ctx, os.LookupEnv)
}

type defaultFFmpegResolver struct{}

func (defaultFFmpegResolver) Resolve(ctx context.Context, configuredPath string) (string, error) {
	return ffmpeg.NewResolver(ffmpeg.WithConfiguredPath(configuredPath)).Resolve(ctx)
}

func (defaultFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) (string, error) {
	return ffmpeg.NewVersionChecker().Check(ctx, ffmpegPath)
}

type defaultProber struct{}

func (defaultProber) Probe(ctx context.Context, ffmpegPath, mediaPath string) (time.Duration, error) {
	return ffmpeg.NewExecutor().Probe(ctx, ffmpegPath, mediaPath)
}

type defaultExporterFactory struct{}

func (defaultExporterFactory) NewExporter(ffmpegPath string, logger *slog.Logger, stdin io.Reader, stderr io.Writer) Exporter {
	return split.NewExporter(ffmpeg.NewExecutor(), ffmpegPath,
		split.WithLogger(logger),
		split.WithStdin(stdin),
		split.WithStderr(stderr),
	)
}

type defaultPublisherFactory struct{}

func (defaultPublisherFactory) NewPublisher(ctx context.Context, target string, cfg config.Config, logger *slog.Logger) (storage.Publisher, error) {
	return storage.NewPublisher(ctx, target, storage.S3Config{
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	}, logger)
}

// Compile-time interface verification.
var (
	_ ConfigLoader     = (*defaultConfigLoader)(nil)
	_ FFmpegResolver   = (*defaultFFmpegResolver)(nil)
	_ Prober           = (*defaultProber)(nil)
	_ ExporterFactory  = (*defaultExporterFactory)(nil)
	_ PublisherFactory = (*defaultPublisherFactory)(nil)
	_ Exporter         = (*split.Exporter)(nil)
)
