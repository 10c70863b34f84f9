package mosh

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// Pixelate downsamples the image by factor with nearest-neighbour
// resampling and scales it back up to its original size, leaving square
// blocks of roughly factor pixels. A factor of 0 or 1 is a no-op.
//
// Bytes past Width*Channels on each scanline are left untouched.
func Pixelate(meta ImageMeta, buf []byte, factor uint8) error {
	if factor <= 1 {
		return nil
	}
	if err := meta.Validate(buf); err != nil {
		return err
	}
	if meta.ColorType == Indexed {
		return fmt.Errorf("%w: cannot pixelate %s images", ErrUnsupportedColorType, meta.ColorType)
	}

	w, h, p := int(meta.Width), int(meta.Height), int(factor)
	if w < p || h < p {
		return fmt.Errorf("%w: pixelation %d larger than %dx%d image", ErrInvalidParameters, p, w, h)
	}
	if w > math.MaxInt/4/h {
		return fmt.Errorf("%w: %dx%d resampling buffer", ErrOutOfMemory, w, h)
	}

	src := toNRGBA(meta, buf)

	small := imaging.Resize(src, w/p, h/p, imaging.NearestNeighbor)
	if small.Bounds().Empty() {
		return fmt.Errorf("%w: downsampling to %dx%d", ErrOutOfMemory, w/p, h/p)
	}

	restored := imaging.Resize(small, w, h, imaging.NearestNeighbor)
	if restored.Bounds().Dx() != w || restored.Bounds().Dy() != h {
		return fmt.Errorf("%w: upsampling to %dx%d", ErrOutOfMemory, w, h)
	}

	fromNRGBA(meta, restored, buf)
	return nil
}

// toNRGBA copies the pixel bytes of buf into a non-premultiplied image, so
// nearest-neighbour resampling moves channel values without altering them.
func toNRGBA(meta ImageMeta, buf []byte) *image.NRGBA {
	w, h := int(meta.Width), int(meta.Height)
	channels := meta.ColorType.Channels()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		row := buf[y*meta.LineSize:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			s := row[x*channels:]
			d := dst[x*4 : x*4+4]
			switch channels {
			case 1:
				d[0], d[1], d[2], d[3] = s[0], s[0], s[0], 0xff
			case 2:
				d[0], d[1], d[2], d[3] = s[0], s[0], s[0], s[1]
			case 3:
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 0xff
			case 4:
				copy(d, s[:4])
			}
		}
	}
	return img
}

// fromNRGBA writes img back into buf in the layout described by meta.
func fromNRGBA(meta ImageMeta, img *image.NRGBA, buf []byte) {
	w, h := int(meta.Width), int(meta.Height)
	channels := meta.ColorType.Channels()

	for y := 0; y < h; y++ {
		row := buf[y*meta.LineSize:]
		src := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			s := src[x*4 : x*4+4]
			d := row[x*channels:]
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
}
