package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const publishDirPerm = 0o750

// LocalPublisher copies files into a directory.
type LocalPublisher struct {
	dir string
}

// NewLocalPublisher creates dir if needed and returns a publisher into it.
func NewLocalPublisher(dir string) (*LocalPublisher, error) {
	if err := os.MkdirAll(dir, publishDirPerm); err != nil {
		return nil, fmt.Errorf("create publish directory: %w", err)
	}
	return &LocalPublisher{dir: dir}, nil
}

// Dir returns the destination directory.
func (p *LocalPublisher) Dir() string {
	return p.dir
}

// Publish copies localPath into the directory under its base name.
func (p *LocalPublisher) Publish(ctx context.Context, localPath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(localPath) // #nosec G304 -- path comes from our own export
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst := filepath.Join(p.dir, filepath.Base(localPath))
	out, err := os.Create(dst) // #nosec G304 -- destination is the configured directory
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("copy file: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return dst, nil
}
