package ffmpeg

import "errors"

// ErrNotFound indicates no usable ffmpeg binary could be located or installed.
var ErrNotFound = errors.New("ffmpeg not found")

// ErrUnsupportedPlatform indicates the OS/architecture has no downloadable build.
var ErrUnsupportedPlatform = errors.New("unsupported platform for ffmpeg auto-download")

// ErrChecksumMismatch indicates the downloaded archive does not match its pinned SHA-256.
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ErrDownloadFailed indicates the binary download could not be completed.
var ErrDownloadFailed = errors.New("download failed")

// ErrTimeout indicates ffmpeg ignored the stop request and had to be killed.
var ErrTimeout = errors.New("ffmpeg did not exit within timeout")

// ErrUnknownVersion indicates "ffmpeg -version" printed nothing recognizable.
var ErrUnknownVersion = errors.New("cannot determine ffmpeg version")

// ErrProbeFailed indicates the media duration could not be determined.
var ErrProbeFailed = errors.New("cannot determine media duration")
