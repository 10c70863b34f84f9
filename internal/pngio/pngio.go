// Package pngio converts between PNG files and the flat scanline buffers the
// mosh engine works on.
//
// Decoding keeps the file's color type: grayscale stays one byte per pixel,
// RGB three, and so on, with LineSize equal to Width times the channel count.
// Encoding writes the buffer back with the same layout. Only 8-bit images
// are supported.
package pngio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixelmosh/internal/mosh"
)

var (
	// ErrDecoding wraps every failure to read a PNG.
	ErrDecoding = errors.New("decoding error")

	// ErrEncoding wraps every failure to build or write a PNG.
	ErrEncoding = errors.New("encoding error")
)

var signature = []byte("\x89PNG\r\n\x1a\n")

// Image is a decoded PNG in scanline form.
type Image struct {
	// Meta describes the layout of Pix.
	Meta mosh.ImageMeta

	// Pix holds Meta.Height scanlines of Meta.LineSize bytes.
	Pix []byte

	// Palette is set for Indexed images only.
	Palette color.Palette
}

// header is the part of IHDR the decoder needs.
type header struct {
	width, height uint32
	bitDepth      uint8
	colorType     mosh.ColorType
}

// readHeader parses the signature and IHDR chunk.
func readHeader(data []byte) (header, error) {
	if len(data) < 8 || !bytes.Equal(data[:8], signature) {
		return header{}, errors.New("invalid PNG signature")
	}
	if len(data) < 8+8+13 || string(data[12:16]) != "IHDR" {
		return header{}, errors.New("missing IHDR chunk")
	}
	ihdr := data[16:29]
	return header{
		width:     binary.BigEndian.Uint32(ihdr[0:4]),
		height:    binary.BigEndian.Uint32(ihdr[4:8]),
		bitDepth:  ihdr[8],
		colorType: mosh.ColorType(ihdr[9]),
	}, nil
}

// Decode reads a PNG file into scanline form.
func Decode(data []byte) (*Image, error) {
	hdr, err := readHeader(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
	}
	if hdr.bitDepth != 8 {
		return nil, fmt.Errorf("%w: unsupported bit depth %d", ErrDecoding, hdr.bitDepth)
	}
	channels := hdr.colorType.Channels()
	if channels == 0 {
		return nil, fmt.Errorf("%w: unknown color type %d", ErrDecoding, uint8(hdr.colorType))
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecoding, err)
	}

	w, h := int(hdr.width), int(hdr.height)
	out := &Image{
		Meta: mosh.ImageMeta{
			Width:     hdr.width,
			Height:    hdr.height,
			ColorType: hdr.colorType,
			BitDepth:  hdr.bitDepth,
			LineSize:  w * channels,
		},
	}
	out.Pix = make([]byte, out.Meta.BufferSize())

	if hdr.colorType == mosh.Indexed {
		p, ok := img.(*image.Paletted)
		if !ok {
			return nil, fmt.Errorf("%w: indexed image decoded as %T", ErrDecoding, img)
		}
		for y := 0; y < h; y++ {
			copy(out.Pix[y*w:(y+1)*w], p.Pix[y*p.Stride:])
		}
		out.Palette = p.Palette
		return out, nil
	}

	nrgba := imaging.Clone(img)
	for y := 0; y < h; y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := out.Pix[y*out.Meta.LineSize:]
		for x := 0; x < w; x++ {
			s := src[x*4 : x*4+4]
			d := dst[x*channels:]
			switch channels {
			case 1:
				d[0] = s[0]
			case 2:
				d[0], d[1] = s[0], s[3]
			case 3:
				d[0], d[1], d[2] = s[0], s[1], s[2]
			case 4:
				copy(d[:4], s)
			}
		}
	}

	return out, nil
}

// Encode writes buf as a PNG with the layout described by meta. palette is
// required for Indexed images and ignored otherwise.
//
// Go's encoder has no gray+alpha mode, so GrayscaleAlpha buffers are
// written as RGBA with equal color channels.
func Encode(w io.Writer, meta mosh.ImageMeta, buf []byte, palette color.Palette) error {
	if err := meta.Validate(buf); err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	img, err := ToImage(meta, buf, palette)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return nil
}

// EncodeImage is Encode for a decoded Image.
func EncodeImage(w io.Writer, img *Image) error {
	return Encode(w, img.Meta, img.Pix, img.Palette)
}

// ToImage wraps a scanline buffer in a Go image without re-encoding it.
// GrayscaleAlpha and RGB become *image.NRGBA.
func ToImage(meta mosh.ImageMeta, buf []byte, palette color.Palette) (image.Image, error) {
	if err := meta.Validate(buf); err != nil {
		return nil, err
	}

	w, h := int(meta.Width), int(meta.Height)
	rect := image.Rect(0, 0, w, h)

	switch meta.ColorType {
	case mosh.Grayscale:
		g := image.NewGray(rect)
		for y := 0; y < h; y++ {
			copy(g.Pix[y*g.Stride:y*g.Stride+w], buf[y*meta.LineSize:])
		}
		return g, nil

	case mosh.Indexed:
		if len(palette) == 0 {
			return nil, errors.New("indexed image without palette")
		}
		p := image.NewPaletted(rect, palette)
		for y := 0; y < h; y++ {
			copy(p.Pix[y*p.Stride:y*p.Stride+w], buf[y*meta.LineSize:])
		}
		return p, nil
	}

	channels := meta.ColorType.Channels()
	img := image.NewNRGBA(rect)
	for y := 0; y < h; y++ {
		src := buf[y*meta.LineSize:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			s := src[x*channels:]
			d := dst[x*4 : x*4+4]
			switch channels {
			case 2:
				d[0], d[1], d[2], d[3] = s[0], s[0], s[0], s[1]
			case 3:
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 0xff
			case 4:
				copy(d, s[:4])
			}
		}
	}
	return img, nil
}
