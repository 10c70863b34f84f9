package mosh

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pixelAt returns the channel bytes of pixel (x, y).
func pixelAt(meta ImageMeta, buf []byte, x, y int) []byte {
	c := meta.ColorType.Channels()
	off := y*meta.LineSize + x*c
	return buf[off : off+c]
}

func TestPixelate_Blocks(t *testing.T) {
	for _, ct := range []ColorType{Grayscale, GrayscaleAlpha, RGB, RGBA} {
		t.Run(ct.String(), func(t *testing.T) {
			meta, buf := newTestImage(8, 6, ct)
			orig := slices.Clone(buf)

			require.NoError(t, Pixelate(meta, buf, 2))

			for by := 0; by < 6; by += 2 {
				for bx := 0; bx < 8; bx += 2 {
					block := pixelAt(meta, buf, bx, by)

					var fromBlock bool
					for y := by; y < by+2; y++ {
						for x := bx; x < bx+2; x++ {
							assert.Equal(t, block, pixelAt(meta, buf, x, y), "block (%d,%d) pixel (%d,%d)", bx, by, x, y)
							if slices.Equal(block, pixelAt(meta, orig, x, y)) {
								fromBlock = true
							}
						}
					}
					assert.True(t, fromBlock, "block (%d,%d) sampled from inside the block", bx, by)
				}
			}
		})
	}
}

func TestPixelate_NoopFactors(t *testing.T) {
	meta, buf := newTestImage(5, 5, RGB)
	orig := slices.Clone(buf)

	require.NoError(t, Pixelate(meta, buf, 0))
	require.NoError(t, Pixelate(meta, buf, 1))
	assert.Equal(t, orig, buf)
}

func TestPixelate_FactorLargerThanImage(t *testing.T) {
	meta, buf := newTestImage(5, 20, RGB)
	assert.ErrorIs(t, Pixelate(meta, buf, 6), ErrInvalidParameters)

	meta, buf = newTestImage(20, 3, RGB)
	assert.ErrorIs(t, Pixelate(meta, buf, 4), ErrInvalidParameters)
}

func TestPixelate_Indexed(t *testing.T) {
	meta, buf := newTestImage(8, 8, Indexed)
	assert.ErrorIs(t, Pixelate(meta, buf, 2), ErrUnsupportedColorType)
}

func TestPixelate_PaddingUntouched(t *testing.T) {
	meta := ImageMeta{Width: 4, Height: 4, ColorType: RGB, BitDepth: 8, LineSize: 14}
	buf := make([]byte, meta.BufferSize())
	for i := range buf {
		buf[i] = byte(i)
	}
	orig := slices.Clone(buf)

	require.NoError(t, Pixelate(meta, buf, 2))

	for y := 0; y < 4; y++ {
		pad := buf[y*14+12 : y*14+14]
		assert.Equal(t, orig[y*14+12:y*14+14], pad, "line %d padding", y)
	}
}

func TestPixelate_WholeImageFactor(t *testing.T) {
	meta, buf := newTestImage(4, 4, RGBA)
	require.NoError(t, Pixelate(meta, buf, 4))

	first := pixelAt(meta, buf, 0, 0)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			assert.Equal(t, first, pixelAt(meta, buf, x, y))
		}
	}
}
