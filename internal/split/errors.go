package split

import "errors"

// ErrInvalidOptions indicates export options that failed validation.
var ErrInvalidOptions = errors.New("invalid export options")

// ErrExportFailed indicates at least one track could not be exported.
var ErrExportFailed = errors.New("track export failed")
