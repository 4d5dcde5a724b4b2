// Package config manages the persistent key=value settings file, the
// CUESPLIT_* environment fallbacks and the logger built from them.
package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Config keys.
const (
	KeyOutputDir  = "output-dir"
	KeyFormat     = "format"
	KeyFFmpegPath = "ffmpeg-path"
	KeyCharset    = "charset"
)

// EnvPrefix prefixes every environment fallback, e.g. CUESPLIT_OUTPUT_DIR.
const EnvPrefix = "CUESPLIT_"

const appName = "go-cuesplit"

// ErrInvalid indicates a configuration value that failed validation.
var ErrInvalid = errors.New("invalid configuration")

// Keys returns the keys accepted by the config file, in display order.
func Keys() []string {
	return []string{KeyOutputDir, KeyFormat, KeyFFmpegPath, KeyCharset}
}

// IsKey reports whether key is a config file key.
func IsKey(key string) bool {
	return slices.Contains(Keys(), key)
}

// EnvName returns the environment variable backing a config file key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Config holds the effective settings. The env tags name the variables
// without EnvPrefix.
type Config struct {
	OutputDir  string `env:"OUTPUT_DIR"`
	Format     string `env:"FORMAT" validate:"omitempty,alphanum,max=10"`
	FFmpegPath string `env:"FFMPEG_PATH"`
	Charset    string `env:"CHARSET"`

	LogLevel  string `env:"LOG_LEVEL, default=info" validate:"oneof=debug info warn warning error"`
	LogFormat string `env:"LOG_FORMAT, default=text" validate:"oneof=text json"`

	// Optional settings for s3:// publish targets.
	S3Region          string `env:"S3_REGION"`
	S3Endpoint        string `env:"S3_ENDPOINT" validate:"omitempty,url"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

// lookupFunc adapts a lookup function such as os.LookupEnv.
type lookupFunc func(string) (string, bool)

func (f lookupFunc) Lookup(key string) (string, bool) { return f(key) }

// Load reads the environment through lookup, then applies the config file
// on top: a key set in the file wins over its environment variable.
// A missing file is not an error.
func Load(ctx context.Context, lookup func(string) (string, bool)) (Config, error) {
	var cfg Config
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookupFunc(lookup)),
	})
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	p, err := path()
	if err != nil {
		return cfg, err
	}
	data, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	cfg.apply(data)

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

// apply overrides fields with the non-empty file values.
func (c *Config) apply(data map[string]string) {
	for key, dst := range map[string]*string{
		KeyOutputDir:  &c.OutputDir,
		KeyFormat:     &c.Format,
		KeyFFmpegPath: &c.FFmpegPath,
		KeyCharset:    &c.Charset,
	} {
		if v := data[key]; v != "" {
			*dst = v
		}
	}
}

// Value returns the effective value of a config file key.
func (c Config) Value(key string) string {
	switch key {
	case KeyOutputDir:
		return c.OutputDir
	case KeyFormat:
		return c.Format
	case KeyFFmpegPath:
		return c.FFmpegPath
	case KeyCharset:
		return c.Charset
	default:
		return ""
	}
}

// NewLogger creates a structured logger writing to w.
// When format is "json", it outputs JSON records; otherwise text.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(level)}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewLogger creates the logger described by the configuration.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	return NewLogger(w, c.LogLevel, c.LogFormat)
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-cuesplit.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Path returns the config file location.
func Path() (string, error) {
	return path()
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return data, nil
}

// Save writes a single key=value to the config file, creating the file
// and its directory if needed. Other pairs are kept; comments are not.
func Save(key, value string) error {
	p, err := path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map with keys in sorted order.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	data, err := List()
	if err != nil {
		return "", err
	}
	return data[key], nil
}

// List returns all config file values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	return data, nil
}

// ResolveOutputPath resolves the final output path using the following precedence:
//  1. If output is absolute, use it as-is
//  2. If output is relative and outputDir is set, join them
//  3. If output is empty, use defaultName in outputDir (or cwd if no outputDir)
func ResolveOutputPath(output, outputDir, defaultName string) string {
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}
	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}
	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// EnsureOutputDir checks that d is a writable directory, creating it when
// it does not exist yet.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("output-dir cannot be empty")
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			if err := os.MkdirAll(d, 0o750); err != nil { // #nosec G301 -- user output dir
				return fmt.Errorf("cannot create directory: %w", err)
			}
			return nil
		}
		return fmt.Errorf("cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", d)
	}

	testFile := filepath.Join(d, ".go-cuesplit-write-test")
	f, err := os.Create(testFile) // #nosec G304 -- path is constructed from validated dir
	if err != nil {
		return fmt.Errorf("directory is not writable: %w", err)
	}
	_ = f.Close()
	_ = os.Remove(testFile)
	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
