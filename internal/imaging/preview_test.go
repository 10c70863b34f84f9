package imaging

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/pixelmosh/internal/mosh"
	"github.com/ironsheep/pixelmosh/internal/pngio"
)

func TestPreview(t *testing.T) {
	img := scanlineImage(10, 6)

	tests := []struct {
		name  string
		scale float64
		w, h  int
	}{
		{"native", 1, 10, 6},
		{"zero means native", 0, 10, 6},
		{"double", 2, 20, 12},
		{"half", 0.5, 5, 3},
		{"tiny clamps to one pixel", 0.01, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Preview(img, tt.scale)
			require.NoError(t, err)

			assert.Equal(t, tt.w, result.Width)
			assert.Equal(t, tt.h, result.Height)
			assert.Equal(t, "image/png", result.MimeType)

			data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
			require.NoError(t, err)
			assert.Equal(t, result.Bytes, len(data))

			decoded, err := png.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, tt.w, decoded.Bounds().Dx())
		})
	}
}

func TestPreview_NativeIsExact(t *testing.T) {
	img := scanlineImage(4, 4)
	result, err := Preview(img, 1)
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	require.NoError(t, err)
	back, err := pngio.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, img.Pix, back.Pix)
}

func TestPreview_Errors(t *testing.T) {
	img := scanlineImage(4, 4)

	_, err := Preview(img, -1)
	assert.Error(t, err)
	_, err = Preview(img, MaxPreviewScale+1)
	assert.Error(t, err)

	broken := &pngio.Image{
		Meta: mosh.ImageMeta{Width: 2, Height: 2, ColorType: mosh.Indexed, BitDepth: 8, LineSize: 2},
		Pix:  make([]byte, 4),
	}
	_, err = Preview(broken, 1)
	assert.Error(t, err, "indexed image without palette")
}
