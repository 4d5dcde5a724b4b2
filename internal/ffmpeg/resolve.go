// Package ffmpeg locates, installs and runs the ffmpeg binary that performs
// the actual remuxing of tracks, and probes media durations with it.
package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// ffmpegVersion is the pinned build installed by auto-download.
	// Binaries come from github.com/eugeneware/ffmpeg-static release b6.1.1.
	ffmpegVersion = "6.1.1"

	binaryName = "ffmpeg"

	// downloadTimeout bounds the whole download of a ~30MB archive.
	downloadTimeout = 10 * time.Minute

	// versionFileName records which build sits in the install directory.
	versionFileName = ".version"

	// appDirName is the per-user directory holding the installed binary.
	appDirName = ".go-cuesplit"

	installDirPerm = 0o750
)

// envFFmpegPath names an explicit binary; it must exist when set.
const envFFmpegPath = "FFMPEG_PATH"

const downloadBaseURL = "https://github.com/eugeneware/ffmpeg-static/releases/download/b6.1.1"

var defaultHTTPClient = &http.Client{
	Timeout: downloadTimeout,
	Transport: &http.Transport{
		DialContext:           (&net.Dialer{Timeout: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	},
}

// binaryInfo locates a gzipped build and pins its checksum.
type binaryInfo struct {
	URL    string
	SHA256 string
}

// platformBuild returns the download for goos/goarch, if one exists.
func platformBuild(goos, goarch string) (binaryInfo, bool) {
	switch goos + "/" + goarch {
	case "darwin/arm64":
		return binaryInfo{downloadBaseURL + "/ffmpeg-darwin-arm64.gz", "8923876afa8db5585022d7860ec7e589af192f441c56793971276d450ed3bbfa"}, true
	case "darwin/amd64":
		return binaryInfo{downloadBaseURL + "/ffmpeg-darwin-x64.gz", "5d8fb6f280c428d0e82cd5ee68215f0734d64f88e37dcc9e082f818c9e5025f0"}, true
	case "linux/amd64":
		return binaryInfo{downloadBaseURL + "/ffmpeg-linux-x64.gz", "bfe8a8fc511530457b528c48d77b5737527b504a3797a9bc4866aeca69c2dffa"}, true
	case "windows/amd64":
		return binaryInfo{downloadBaseURL + "/ffmpeg-win32-x64.gz", "8883a3dffbd0a16cf4ef95206ea05283f78908dbfb118f73c83f4951dcc06d77"}, true
	default:
		return binaryInfo{}, false
	}
}

// Resolver finds ffmpeg and installs it when nothing usable is present.
type Resolver struct {
	reader     fileReader
	writer     fileWriter
	http       httpDoer
	env        envProvider
	logger     *slog.Logger
	stderr     io.Writer
	goos       string
	goarch     string
	configured string
	build      *binaryInfo
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithConfiguredPath sets the ffmpeg-path configuration value. A file is
// used as the binary; a directory is expected to contain it.
func WithConfiguredPath(path string) ResolverOption {
	return func(r *Resolver) { r.configured = path }
}

// WithFileReader sets the filesystem reader.
func WithFileReader(fr fileReader) ResolverOption {
	return func(r *Resolver) { r.reader = fr }
}

// WithFileWriter sets the filesystem writer.
func WithFileWriter(fw fileWriter) ResolverOption {
	return func(r *Resolver) { r.writer = fw }
}

// WithHTTPClient sets the HTTP client used for downloads.
func WithHTTPClient(c httpDoer) ResolverOption {
	return func(r *Resolver) { r.http = c }
}

// WithEnvProvider sets the environment provider.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(r *Resolver) { r.env = e }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithStderr sets the writer for user-facing download notices.
func WithStderr(w io.Writer) ResolverOption {
	return func(r *Resolver) { r.stderr = w }
}

// WithPlatform overrides the target platform.
func WithPlatform(goos, goarch string) ResolverOption {
	return func(r *Resolver) {
		r.goos = goos
		r.goarch = goarch
	}
}

// withBuild overrides the download location (tests only).
func withBuild(info binaryInfo) ResolverOption {
	return func(r *Resolver) { r.build = &info }
}

// NewResolver creates a Resolver backed by the real filesystem and network.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		reader: osFS{},
		writer: osFS{},
		http:   defaultHTTPClient,
		env:    osEnv{},
		logger: slog.New(slog.DiscardHandler),
		stderr: os.Stderr,
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the ffmpeg binary to run, in order of precedence:
//  1. FFMPEG_PATH (error if set but missing)
//  2. the ffmpeg-path configuration value (error if set but missing)
//  3. ~/.go-cuesplit/bin/ffmpeg, when its .version matches the pinned build
//  4. ffmpeg on PATH
//  5. a fresh download into ~/.go-cuesplit/bin
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	if p := r.env.Getenv(envFFmpegPath); p != "" {
		if _, err := r.reader.Stat(p); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q but binary not found (unset to enable auto-download)",
				ErrNotFound, envFFmpegPath, p)
		}
		r.logger.Debug("ffmpeg from environment", "path", p)
		return p, nil
	}

	if r.configured != "" {
		p, err := r.fromConfigured()
		if err != nil {
			return "", err
		}
		r.logger.Debug("ffmpeg from configuration", "path", p)
		return p, nil
	}

	bin, err := r.installedBinary()
	if err != nil {
		return "", err
	}
	if r.isCurrent(bin) {
		r.logger.Debug("ffmpeg from install dir", "path", bin)
		return bin, nil
	}

	if p, err := r.env.LookPath(binaryName); err == nil {
		r.logger.Debug("ffmpeg from PATH", "path", p)
		return p, nil
	}

	fmt.Fprintln(r.stderr, "ffmpeg not found, downloading...")
	if err := r.install(ctx, bin); err != nil {
		return "", fmt.Errorf("%w: auto-download failed: %v\n\n%s", ErrNotFound, err, r.manualInstallInstructions())
	}
	return bin, nil
}

// fromConfigured resolves the ffmpeg-path value: a regular file is the
// binary itself, a directory must contain the platform's binary name.
func (r *Resolver) fromConfigured() (string, error) {
	info, err := r.reader.Stat(r.configured)
	if err != nil {
		return "", fmt.Errorf("%w: ffmpeg-path %q does not exist", ErrNotFound, r.configured)
	}
	if !info.IsDir() {
		return r.configured, nil
	}
	p := filepath.Join(r.configured, r.exeName())
	if _, err := r.reader.Stat(p); err != nil {
		return "", fmt.Errorf("%w: no %s in ffmpeg-path %q", ErrNotFound, r.exeName(), r.configured)
	}
	return p, nil
}

// exeName is the binary file name on the target platform.
func (r *Resolver) exeName() string {
	if r.goos == "windows" {
		return binaryName + ".exe"
	}
	return binaryName
}

// installedBinary is where an auto-downloaded ffmpeg lives.
func (r *Resolver) installedBinary() (string, error) {
	home, err := r.env.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, appDirName, "bin", r.exeName()), nil
}

// isCurrent reports whether bin exists next to a .version naming the
// pinned build. A stale or missing marker triggers a reinstall.
func (r *Resolver) isCurrent(bin string) bool {
	if _, err := r.reader.Stat(bin); err != nil {
		return false
	}
	data, err := r.reader.ReadFile(filepath.Join(filepath.Dir(bin), versionFileName))
	return err == nil && string(data) == ffmpegVersion
}

func (r *Resolver) manualInstallInstructions() string {
	var how string
	switch r.goos {
	case "darwin":
		how = "  brew install ffmpeg\n\nOr download from https://evermeet.cx/ffmpeg/"
	case "linux":
		how = "  Ubuntu/Debian: sudo apt install ffmpeg\n  Fedora:        sudo dnf install ffmpeg\n  Arch:          sudo pacman -S ffmpeg"
	case "windows":
		how = "  winget install ffmpeg\n\nOr download from https://www.gyan.dev/ffmpeg/builds/"
	default:
		how = "  download from https://ffmpeg.org/download.html"
	}
	return "To install FFmpeg manually:\n" + how +
		"\n\nOr run `cuesplit config set ffmpeg-path <binary or directory>`, or set FFMPEG_PATH."
}
