package storage

import "errors"

// Sentinel errors for publishing.
var (
	// ErrInvalidTarget indicates a publish target that is neither a
	// directory path nor an s3://bucket[/prefix] URL.
	ErrInvalidTarget = errors.New("invalid publish target")

	// ErrPublishFailed indicates at least one file could not be published.
	ErrPublishFailed = errors.New("publish failed")
)
