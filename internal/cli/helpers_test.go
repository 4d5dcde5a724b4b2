package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-cuesplit/internal/config"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	ffmpegResolver *mockFFmpegResolver
	configLoader   *mockConfigLoader
	prober         *mockProber
	exporter       *mockExporter
	exporters      *mockExporterFactory
	publisher      *mockPublisher
	publishers     *mockPublisherFactory
}

func newTestMocks() *testMocks {
	exporter := &mockExporter{}
	publisher := &mockPublisher{}
	return &testMocks{
		ffmpegResolver: &mockFFmpegResolver{},
		configLoader:   &mockConfigLoader{},
		prober:         &mockProber{},
		exporter:       exporter,
		exporters:      &mockExporterFactory{exporter: exporter},
		publisher:      publisher,
		publishers:     &mockPublisherFactory{publisher: publisher},
	}
}

// ---------------------------------------------------------------------------
// testEnv - creates a fully mocked Env for testing
// ---------------------------------------------------------------------------

// testClock is the fixed time of test environments; 0x6977797C in hex.
var testClock = time.Unix(0x6977797C, 0).UTC()

type testEnvOptions struct {
	stdout    io.Writer
	stderr    io.Writer
	lookupEnv func(string) (string, bool)
	mocks     *testMocks
}

type testEnvOption func(*testEnvOptions)

func withStdout(w io.Writer) testEnvOption {
	return func(o *testEnvOptions) { o.stdout = w }
}

func withStderr(w io.Writer) testEnvOption {
	return func(o *testEnvOptions) { o.stderr = w }
}

func withLookupEnv(env map[string]string) testEnvOption {
	return func(o *testEnvOptions) {
		o.lookupEnv = func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		}
	}
}

func withConfig(cfg config.Config) testEnvOption {
	return func(o *testEnvOptions) {
		o.mocks.configLoader.LoadFunc = func(context.Context) (config.Config, error) {
			return cfg, nil
		}
	}
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	options := &testEnvOptions{
		stdout:    &syncBuffer{},
		stderr:    &syncBuffer{},
		lookupEnv: func(string) (string, bool) { return "", false },
		mocks:     newTestMocks(),
	}
	for _, opt := range opts {
		opt(options)
	}

	env := &Env{
		Stdin:            strings.NewReader(""),
		Stdout:           options.stdout,
		Stderr:           options.stderr,
		LookupEnv:        options.lookupEnv,
		Now:              func() time.Time { return testClock },
		ConfigLoader:     options.mocks.configLoader,
		FFmpegResolver:   options.mocks.ffmpegResolver,
		Prober:           options.mocks.prober,
		ExporterFactory:  options.mocks.exporters,
		PublisherFactory: options.mocks.publishers,
	}
	return env, options.mocks
}

// ---------------------------------------------------------------------------
// File fixtures
// ---------------------------------------------------------------------------

const testCue = `PERFORMER "The Band"
TITLE "Live Album"
FILE "live.flac" WAVE
  TRACK 01 AUDIO
    TITLE "Opening"
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    TITLE "Middle"
    INDEX 01 03:00:00
  TRACK 03 AUDIO
    TITLE "Closing"
    INDEX 01 07:30:00
`

const testText = `0:00 Artist - One
2:30 Artist - Two
5:00 Other - Three
`

// writeFile creates dir/name with content and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("os.WriteFile(%q) unexpected error: %v", p, err)
	}
	return p
}

// albumFixture writes testCue and the media it names into a temp dir and
// returns both paths.
func albumFixture(t *testing.T) (sheet, media string) {
	t.Helper()
	dir := t.TempDir()
	return writeFile(t, dir, "live.cue", testCue), writeFile(t, dir, "live.flac", "fake audio")
}
