// Package storage publishes exported track files, either by copying them
// into a local directory or by uploading them to an S3 bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Publisher makes one local file available at a destination and returns
// its location (a path or an s3:// URL).
type Publisher interface {
	Publish(ctx context.Context, localPath string) (string, error)
}

var (
	_ Publisher = (*LocalPublisher)(nil)
	_ Publisher = (*S3Publisher)(nil)
)

const s3Scheme = "s3://"

// ParseS3URL splits "s3://bucket/some/prefix" into bucket and prefix.
// The prefix is returned without leading or trailing slashes.
func ParseS3URL(target string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(target, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: %q is not an s3:// URL", ErrInvalidTarget, target)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%w: missing bucket in %q", ErrInvalidTarget, target)
	}
	return bucket, strings.Trim(prefix, "/"), nil
}

// NewPublisher returns an S3Publisher for s3:// targets and a
// LocalPublisher otherwise. s3cfg supplies region, endpoint and
// credentials; its Bucket and Prefix are taken from target.
func NewPublisher(ctx context.Context, target string, s3cfg S3Config, logger *slog.Logger) (Publisher, error) {
	if strings.TrimSpace(target) == "" {
		return nil, fmt.Errorf("%w: empty target", ErrInvalidTarget)
	}
	if !strings.HasPrefix(target, s3Scheme) {
		return NewLocalPublisher(target)
	}
	bucket, prefix, err := ParseS3URL(target)
	if err != nil {
		return nil, err
	}
	s3cfg.Bucket = bucket
	s3cfg.Prefix = prefix
	return NewS3Publisher(ctx, s3cfg, WithLogger(logger))
}

// MaxParallelUploads bounds how many files PublishAll sends at once.
const MaxParallelUploads = 4

// PublishAll publishes every path, up to MaxParallelUploads at a time,
// and returns the destinations of the successful ones in path order.
// A failure does not stop the remaining files; all failures are joined
// under ErrPublishFailed.
func PublishAll(ctx context.Context, p Publisher, paths []string) ([]string, error) {
	dsts := make([]string, len(paths))
	errs := make([]error, len(paths))

	var g errgroup.Group
	g.SetLimit(MaxParallelUploads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			dst, err := p.Publish(ctx, path)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", path, err)
				return nil
			}
			dsts[i] = dst
			return nil
		})
	}
	_ = g.Wait()

	var published []string
	failed := 0
	for i := range paths {
		if errs[i] != nil {
			failed++
			continue
		}
		published = append(published, dsts[i])
	}
	if failed > 0 {
		return published, fmt.Errorf("%w: %d of %d files: %w", ErrPublishFailed, failed, len(paths), errors.Join(errs...))
	}
	return published, nil
}
