package cli

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/alnah/go-cuesplit/internal/config"
	"github.com/alnah/go-cuesplit/internal/split"
	"github.com/alnah/go-cuesplit/internal/storage"
	"github.com/alnah/go-cuesplit/internal/track"
)

// ---------------------------------------------------------------------------
// Mock FFmpegResolver
// ---------------------------------------------------------------------------

type mockFFmpegResolver struct {
	ResolveFunc      func(ctx context.Context, configuredPath string) (string, error)
	CheckVersionFunc func(ctx context.Context, ffmpegPath string) (string, error)

	mu           sync.Mutex
	resolveCalls int
	configured   string
}

func (m *mockFFmpegResolver) Resolve(ctx context.Context, configuredPath string) (string, error) {
	m.mu.Lock()
	m.resolveCalls++
	m.configured = configuredPath
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, configuredPath)
	}
	return "/usr/bin/ffmpeg", nil
}

func (m *mockFFmpegResolver) CheckVersion(ctx context.Context, ffmpegPath string) (string, error) {
	if m.CheckVersionFunc != nil {
		return m.CheckVersionFunc(ctx, ffmpegPath)
	}
	return "6.1.1", nil
}

func (m *mockFFmpegResolver) ResolveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveCalls
}

func (m *mockFFmpegResolver) Configured() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configured
}

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func(ctx context.Context) (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load(ctx context.Context) (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return config.Config{}, nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock Prober
// ---------------------------------------------------------------------------

type mockProber struct {
	ProbeFunc func(ctx context.Context, ffmpegPath, mediaPath string) (time.Duration, error)

	mu         sync.Mutex
	probeCalls int
}

func (m *mockProber) Probe(ctx context.Context, ffmpegPath, mediaPath string) (time.Duration, error) {
	m.mu.Lock()
	m.probeCalls++
	m.mu.Unlock()

	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, ffmpegPath, mediaPath)
	}
	return 5 * time.Minute, nil
}

func (m *mockProber) ProbeCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeCalls
}

// ---------------------------------------------------------------------------
// Mock ExporterFactory + Exporter
// ---------------------------------------------------------------------------

type mockExporterFactory struct {
	NewExporterFunc func(ffmpegPath string) Exporter
	exporter        *mockExporter

	mu         sync.Mutex
	ffmpegPath string
}

func (m *mockExporterFactory) NewExporter(ffmpegPath string, _ *slog.Logger, _ io.Reader, _ io.Writer) Exporter {
	m.mu.Lock()
	m.ffmpegPath = ffmpegPath
	m.mu.Unlock()

	if m.NewExporterFunc != nil {
		return m.NewExporterFunc(ffmpegPath)
	}
	if m.exporter != nil {
		return m.exporter
	}
	return &mockExporter{}
}

func (m *mockExporterFactory) FFmpegPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ffmpegPath
}

// mockExporter records its inputs. Without ExportFunc it reports every
// track as written to "<OutputDir>/<position>.out".
type mockExporter struct {
	ExportFunc func(ctx context.Context, source string, tracks []track.Resolved, opts split.Options) (split.Report, error)

	mu          sync.Mutex
	exportCalls int
	source      string
	tracks      []track.Resolved
	opts        split.Options
}

func (m *mockExporter) Export(ctx context.Context, source string, tracks []track.Resolved, opts split.Options) (split.Report, error) {
	m.mu.Lock()
	m.exportCalls++
	m.source = source
	m.tracks = tracks
	m.opts = opts
	m.mu.Unlock()

	if m.ExportFunc != nil {
		return m.ExportFunc(ctx, source, tracks, opts)
	}
	var rep split.Report
	for i, t := range tracks {
		rep.Results = append(rep.Results, split.Result{Position: i, Track: t, Output: opts.OutputDir + "/" + t.Title + ".out"})
	}
	return rep, nil
}

func (m *mockExporter) ExportCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exportCalls
}

func (m *mockExporter) Last() (string, []track.Resolved, split.Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source, m.tracks, m.opts
}

// ---------------------------------------------------------------------------
// Mock PublisherFactory + Publisher
// ---------------------------------------------------------------------------

type mockPublisherFactory struct {
	NewPublisherFunc func(ctx context.Context, target string) (storage.Publisher, error)
	publisher        *mockPublisher

	mu     sync.Mutex
	target string
	calls  int
}

func (m *mockPublisherFactory) NewPublisher(ctx context.Context, target string, _ config.Config, _ *slog.Logger) (storage.Publisher, error) {
	m.mu.Lock()
	m.calls++
	m.target = target
	m.mu.Unlock()

	if m.NewPublisherFunc != nil {
		return m.NewPublisherFunc(ctx, target)
	}
	if m.publisher != nil {
		return m.publisher, nil
	}
	return &mockPublisher{}, nil
}

func (m *mockPublisherFactory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockPublisher struct {
	PublishFunc func(ctx context.Context, localPath string) (string, error)

	mu        sync.Mutex
	published []string
}

func (m *mockPublisher) Publish(ctx context.Context, localPath string) (string, error) {
	m.mu.Lock()
	m.published = append(m.published, localPath)
	m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, localPath)
	}
	return "mem://" + localPath, nil
}

func (m *mockPublisher) Published() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.published...)
}

// Compile-time interface verification.
var (
	_ FFmpegResolver    = (*mockFFmpegResolver)(nil)
	_ ConfigLoader      = (*mockConfigLoader)(nil)
	_ Prober            = (*mockProber)(nil)
	_ ExporterFactory   = (*mockExporterFactory)(nil)
	_ Exporter          = (*mockExporter)(nil)
	_ PublisherFactory  = (*mockPublisherFactory)(nil)
	_ storage.Publisher = (*mockPublisher)(nil)
)
