package imaging

import (
	"fmt"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/pixelmosh/internal/mosh"
	"github.com/ironsheep/pixelmosh/internal/pngio"
)

// MaxPaletteColors bounds the count accepted by Palette.
const MaxPaletteColors = 64

// RGBColor represents a color with 8-bit red, green, and blue components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSLColor represents a color in HSL space: hue in degrees, saturation and
// lightness in percent.
type HSLColor struct {
	H int `json:"h"`
	S int `json:"s"`
	L int `json:"l"`
}

// ColorFrequency represents a quantized color and its share of the image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`
	Percentage float64  `json:"percentage"`
	RGB        RGBColor `json:"rgb"`
	HSL        HSLColor `json:"hsl"`
}

// Palette returns up to count of the most common colors in img, most
// common first. Ties are broken by hex value so the result is stable.
//
// Each component is quantized to a multiple of 16 so near-identical colors
// group together; #F0F0F0 and #FAFAFA count as the same color. Alpha is
// ignored.
func Palette(img *pngio.Image, count int) ([]ColorFrequency, error) {
	if count < 1 || count > MaxPaletteColors {
		return nil, fmt.Errorf("palette size must be in [1, %d], got %d", MaxPaletteColors, count)
	}
	if err := img.Meta.Validate(img.Pix); err != nil {
		return nil, err
	}

	counts := make(map[RGBColor]int)
	w, h := int(img.Meta.Width), int(img.Meta.Height)
	channels := img.Meta.ColorType.Channels()

	for y := 0; y < h; y++ {
		line := img.Pix[y*img.Meta.LineSize:]
		for x := 0; x < w; x++ {
			c, err := pixelColor(img, line[x*channels:x*channels+channels])
			if err != nil {
				return nil, err
			}
			c.R, c.G, c.B = c.R/16*16, c.G/16*16, c.B/16*16
			counts[c]++
		}
	}

	total := float64(w * h)
	colors := make([]ColorFrequency, 0, len(counts))
	for c, n := range counts {
		cf := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
		hue, sat, light := cf.Hsl()
		colors = append(colors, ColorFrequency{
			Hex:        cf.Hex(),
			Percentage: float64(n) / total * 100,
			RGB:        c,
			HSL:        HSLColor{H: int(math.Round(hue)) % 360, S: int(math.Round(sat * 100)), L: int(math.Round(light * 100))},
		})
	}

	slices.SortFunc(colors, func(a, b ColorFrequency) int {
		switch {
		case a.Percentage > b.Percentage:
			return -1
		case a.Percentage < b.Percentage:
			return 1
		case a.Hex < b.Hex:
			return -1
		case a.Hex > b.Hex:
			return 1
		}
		return 0
	})

	return colors[:min(count, len(colors))], nil
}

// pixelColor reads the RGB value of one pixel's channel bytes.
func pixelColor(img *pngio.Image, px []byte) (RGBColor, error) {
	switch img.Meta.ColorType {
	case mosh.Grayscale, mosh.GrayscaleAlpha:
		return RGBColor{px[0], px[0], px[0]}, nil
	case mosh.RGB, mosh.RGBA:
		return RGBColor{px[0], px[1], px[2]}, nil
	case mosh.Indexed:
		i := int(px[0])
		if i >= len(img.Palette) {
			return RGBColor{}, fmt.Errorf("palette index %d out of range", i)
		}
		r, g, b, _ := img.Palette[i].RGBA()
		return RGBColor{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}, nil
	}
	return RGBColor{}, fmt.Errorf("%w: %s", mosh.ErrUnsupportedColorType, img.Meta.ColorType)
}
