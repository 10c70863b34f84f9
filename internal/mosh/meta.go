package mosh

import "fmt"

// ColorType is the pixel layout of a scanline buffer. Values match the PNG
// IHDR color type codes.
type ColorType uint8

const (
	Grayscale      ColorType = 0
	RGB            ColorType = 2
	Indexed        ColorType = 3
	GrayscaleAlpha ColorType = 4
	RGBA           ColorType = 6
)

// String returns the color type name.
func (c ColorType) String() string {
	switch c {
	case Grayscale:
		return "grayscale"
	case RGB:
		return "rgb"
	case Indexed:
		return "indexed"
	case GrayscaleAlpha:
		return "grayscale-alpha"
	case RGBA:
		return "rgba"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// Channels returns the number of bytes per pixel for 8-bit images, or 0 for
// an unknown color type.
func (c ColorType) Channels() int {
	switch c {
	case Grayscale, Indexed:
		return 1
	case GrayscaleAlpha:
		return 2
	case RGB:
		return 3
	case RGBA:
		return 4
	default:
		return 0
	}
}

// ImageMeta describes the shape of a decoded pixel buffer.
type ImageMeta struct {
	// Width is the image width in pixels.
	Width uint32 `json:"width"`

	// Height is the image height in pixels, which is also the scanline count.
	Height uint32 `json:"height"`

	// ColorType is the pixel layout.
	ColorType ColorType `json:"color_type"`

	// BitDepth is the bits per channel. Only 8 is supported.
	BitDepth uint8 `json:"bit_depth"`

	// LineSize is the number of bytes per scanline.
	LineSize int `json:"line_size"`
}

// BufferSize returns the number of bytes a buffer of this shape holds.
func (m ImageMeta) BufferSize() int {
	return int(m.Height) * m.LineSize
}

// Validate checks that the metadata describes a buffer the engine can work
// on and that buf matches it.
func (m ImageMeta) Validate(buf []byte) error {
	if m.Width == 0 || m.Height == 0 {
		return fmt.Errorf("%w: image is %dx%d", ErrInvalidParameters, m.Width, m.Height)
	}
	if m.BitDepth != 8 {
		return fmt.Errorf("%w: bit depth %d", ErrInvalidParameters, m.BitDepth)
	}
	channels := m.ColorType.Channels()
	if channels == 0 {
		return fmt.Errorf("%w: %s", ErrUnsupportedColorType, m.ColorType)
	}
	if m.LineSize < int(m.Width)*channels {
		return fmt.Errorf("%w: line size %d shorter than %d pixels of %d channels",
			ErrInvalidParameters, m.LineSize, m.Width, channels)
	}
	if len(buf) != m.BufferSize() {
		return fmt.Errorf("%w: buffer holds %d bytes, want %d",
			ErrInvalidParameters, len(buf), m.BufferSize())
	}
	return nil
}
