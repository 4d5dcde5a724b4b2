package cli

import (
	"errors"

	"github.com/alnah/go-cuesplit/internal/cuesheet"
)

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrNoCueSheet indicates that no cue or txt track list was given.
	ErrNoCueSheet = errors.New("no input track list")

	// ErrNoMediaFile indicates that no media file was given or named by the cue sheet.
	ErrNoMediaFile = errors.New("no input media file")

	// ErrFileNotFound indicates the specified input file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrUnsupportedSheet indicates a track list that is neither .cue nor .txt.
	ErrUnsupportedSheet = cuesheet.ErrUnsupportedSheet

	// ErrOutputDirNotFound indicates an explicit output directory that does not exist.
	ErrOutputDirNotFound = errors.New("output directory not found")

	// ErrInvalidDuration indicates a split interval could not be parsed.
	ErrInvalidDuration = errors.New("invalid duration format")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")

	// ErrInvalidConfigValue indicates a rejected "config set" value.
	ErrInvalidConfigValue = errors.New("invalid config value")
)
