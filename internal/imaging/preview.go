package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/pixelmosh/internal/pngio"
)

// MaxPreviewScale bounds the scale factor accepted by Preview.
const MaxPreviewScale = 8.0

// PreviewResult contains an encoded preview of a buffer.
type PreviewResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	Bytes       int    `json:"bytes"`
}

// Preview encodes img as a base64 PNG, scaling it first when scale is not 1.
//
// Upscaling uses nearest neighbor so moshed blocks stay crisp; downscaling
// uses Lanczos. A scale of 0 is treated as 1.
func Preview(img *pngio.Image, scale float64) (*PreviewResult, error) {
	if scale == 0 {
		scale = 1
	}
	if scale < 0 || scale > MaxPreviewScale {
		return nil, fmt.Errorf("scale must be in (0, %g], got %g", MaxPreviewScale, scale)
	}

	src, err := pngio.ToImage(img.Meta, img.Pix, img.Palette)
	if err != nil {
		return nil, fmt.Errorf("failed to build preview: %w", err)
	}

	var out image.Image = src
	if scale != 1 {
		w := max(1, int(float64(src.Bounds().Dx())*scale))
		h := max(1, int(float64(src.Bounds().Dy())*scale))
		filter := imaging.Lanczos
		if scale > 1 {
			filter = imaging.NearestNeighbor
		}
		out = imaging.Resize(src, w, h, filter)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}

	return &PreviewResult{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		Bytes:       buf.Len(),
	}, nil
}
