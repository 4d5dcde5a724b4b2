package ffmpeg

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

// maxDecompressedSize caps extraction; the binary is ~80MB uncompressed.
const maxDecompressedSize = 200 << 20

// install downloads the pinned build for the target platform, verifies it
// and places it at bin with its .version marker.
func (r *Resolver) install(ctx context.Context, bin string) error {
	info, err := r.platformDownload()
	if err != nil {
		return err
	}

	dir := filepath.Dir(bin)
	if err := r.writer.MkdirAll(dir, installDirPerm); err != nil {
		return fmt.Errorf("cannot create install directory %s: %w", dir, err)
	}

	archive, err := r.fetch(ctx, info, dir)
	if err != nil {
		return err
	}
	defer func() { _ = r.writer.Remove(archive) }()

	if err := gunzipTo(archive, bin); err != nil {
		_ = r.writer.Remove(bin)
		return err
	}
	if r.goos != "windows" {
		if err := r.writer.Chmod(bin, 0o755); err != nil {
			return fmt.Errorf("make binary executable: %w", err)
		}
	}

	if err := r.writer.WriteFile(filepath.Join(dir, versionFileName), []byte(ffmpegVersion), 0o644); err != nil {
		return fmt.Errorf("write version file: %w", err)
	}
	r.logger.Info("ffmpeg installed", "path", bin, "version", ffmpegVersion)
	return nil
}

func (r *Resolver) platformDownload() (binaryInfo, error) {
	if r.build != nil {
		return *r.build, nil
	}
	info, ok := platformBuild(r.goos, r.goarch)
	if !ok {
		return binaryInfo{}, fmt.Errorf("%w: %s/%s (supported: darwin/arm64, darwin/amd64, linux/amd64, windows/amd64)",
			ErrUnsupportedPlatform, r.goos, r.goarch)
	}
	return info, nil
}

// fetch streams the archive into a temp file in dir while hashing it, and
// returns the temp file path once the checksum matched. The caller removes it.
func (r *Resolver) fetch(ctx context.Context, info binaryInfo, dir string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, info.URL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: invalid URL: %v", ErrDownloadFailed, err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d from %s", ErrDownloadFailed, resp.StatusCode, info.URL)
	}

	tmp, err := r.writer.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("cannot create temp file: %w", err)
	}
	name := tmp.Name()

	h := sha256.New()
	_, copyErr := io.Copy(io.MultiWriter(tmp, h), resp.Body)
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		_ = r.writer.Remove(name)
		return "", fmt.Errorf("%w: %v", ErrDownloadFailed, copyErr)
	case closeErr != nil:
		_ = r.writer.Remove(name)
		return "", fmt.Errorf("close temp file: %w", closeErr)
	}

	if got := hex.EncodeToString(h.Sum(nil)); got != info.SHA256 {
		_ = r.writer.Remove(name)
		return "", fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, info.SHA256, got)
	}
	return name, nil
}

// gunzipTo extracts the gzip file src to dst through a temp file renamed
// into place, refusing output larger than maxDecompressedSize.
func gunzipTo(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- src is our own temp file
	if err != nil {
		return fmt.Errorf("cannot open gzip file: %w", err)
	}
	defer func() { _ = in.Close() }()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("invalid gzip file: %w", err)
	}
	defer func() { _ = zr.Close() }()

	out, err := os.CreateTemp(filepath.Dir(dst), ".extract-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file: %w", err)
	}
	tmp := out.Name()
	done := false
	defer func() {
		_ = out.Close()
		if !done {
			_ = os.Remove(tmp)
		}
	}()

	n, err := io.Copy(out, io.LimitReader(zr, maxDecompressedSize))
	if err != nil {
		return fmt.Errorf("decompression failed: %w", err)
	}
	if n >= maxDecompressedSize {
		return fmt.Errorf("decompression failed: file exceeds %d bytes limit", maxDecompressedSize)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		return fmt.Errorf("install binary: %w", err)
	}
	done = true
	return nil
}
