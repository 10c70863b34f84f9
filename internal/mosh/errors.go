package mosh

import "errors"

var (
	// ErrUnsupportedColorType is returned for Indexed images, and for
	// GrayscaleAlpha pixelation on a strict engine.
	ErrUnsupportedColorType = errors.New("unsupported color type")

	// ErrInvalidParameters covers degenerate geometry and out-of-range
	// options.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrOutOfMemory is returned when a resampling buffer cannot be
	// allocated.
	ErrOutOfMemory = errors.New("out of memory")
)
