package cuesheet

import "errors"

// ErrUnsupportedSheet indicates a track list file that is neither .cue nor .txt.
var ErrUnsupportedSheet = errors.New("unsupported track list file, should be CUE or TXT")

// ErrUnknownCharset indicates a charset name that no decoder is registered for.
var ErrUnknownCharset = errors.New("unknown charset")

// ErrInvalidInterval indicates a non-positive split interval or a negative media length.
var ErrInvalidInterval = errors.New("invalid split interval")

// ErrReadSheet indicates the track list file could not be read.
var ErrReadSheet = errors.New("cannot read track list")
