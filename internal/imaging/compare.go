package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/anthonynsimon/bild/blend"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/pixelmosh/internal/pngio"
)

// CompareResult summarizes how far a moshed buffer drifted from its
// original.
type CompareResult struct {
	// ChangedBytes counts buffer bytes that differ.
	ChangedBytes int `json:"changed_bytes"`

	// ChangedPixels counts pixels with at least one differing channel.
	ChangedPixels int `json:"changed_pixels"`

	// ChangedRatio is ChangedPixels over the total pixel count.
	ChangedRatio float64 `json:"changed_ratio"`

	// MeanDeltaE is the mean CIEDE2000 distance over all pixels.
	MeanDeltaE float64 `json:"mean_delta_e"`

	// MaxDeltaE is the largest per-pixel CIEDE2000 distance.
	MaxDeltaE float64 `json:"max_delta_e"`

	// DiffBase64 is a PNG of the per-channel absolute difference.
	DiffBase64 string `json:"diff_base64,omitempty"`

	MimeType string `json:"mime_type,omitempty"`
}

// Compare measures the difference between two images of identical layout.
// When withDiff is set the result carries a difference image.
//
// Alpha is ignored for the color distance and fully transparent pixels
// count as black.
func Compare(before, after *pngio.Image, withDiff bool) (*CompareResult, error) {
	if before.Meta != after.Meta {
		return nil, fmt.Errorf("layout mismatch: %dx%d %s vs %dx%d %s",
			before.Meta.Width, before.Meta.Height, before.Meta.ColorType,
			after.Meta.Width, after.Meta.Height, after.Meta.ColorType)
	}

	a, err := pngio.ToImage(before.Meta, before.Pix, before.Palette)
	if err != nil {
		return nil, fmt.Errorf("failed to read original: %w", err)
	}
	b, err := pngio.ToImage(after.Meta, after.Pix, after.Palette)
	if err != nil {
		return nil, fmt.Errorf("failed to read moshed image: %w", err)
	}

	result := &CompareResult{}
	for i := range before.Pix {
		if before.Pix[i] != after.Pix[i] {
			result.ChangedBytes++
		}
	}

	w, h := int(before.Meta.Width), int(before.Meta.Height)
	channels := before.Meta.ColorType.Channels()
	var sum float64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := y*before.Meta.LineSize + x*channels
			if !bytes.Equal(before.Pix[off:off+channels], after.Pix[off:off+channels]) {
				result.ChangedPixels++
			}

			d := deltaE(a, b, x, y)
			sum += d
			result.MaxDeltaE = max(result.MaxDeltaE, d)
		}
	}

	if total := w * h; total > 0 {
		result.ChangedRatio = float64(result.ChangedPixels) / float64(total)
		result.MeanDeltaE = sum / float64(total)
	}

	if withDiff {
		diff := blend.Difference(a, b)
		var buf bytes.Buffer
		if err := png.Encode(&buf, diff); err != nil {
			return nil, fmt.Errorf("failed to encode diff: %w", err)
		}
		result.DiffBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
		result.MimeType = "image/png"
	}

	return result, nil
}

func deltaE(a, b image.Image, x, y int) float64 {
	ca := opaque(a.At(x, y))
	cb := opaque(b.At(x, y))
	return ca.DistanceCIEDE2000(cb)
}

// opaque converts c to a colorful.Color using its straight RGB values.
func opaque(c color.Color) colorful.Color {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return colorful.Color{}
	}
	// Undo alpha premultiplication.
	return colorful.Color{
		R: float64(r) / float64(a),
		G: float64(g) / float64(a),
		B: float64(b) / float64(a),
	}
}
