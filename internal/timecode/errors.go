package timecode

import "errors"

// ErrNoTimestamp indicates the text holds no H:MM:SS-style timestamp.
var ErrNoTimestamp = errors.New("no timestamp found")

// ErrInvalidCueIndex indicates a cue INDEX value is not MM:SS:FF.
var ErrInvalidCueIndex = errors.New("invalid cue index time")

// ErrOutOfRange indicates a timestamp does not fit in an int or a
// time.Duration.
var ErrOutOfRange = errors.New("timestamp component out of range")
