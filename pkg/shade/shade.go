// Package shade holds the canonical dental shade guides and the
// nearest-shade matcher used by every entry point of the application.
package shade

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit-per-channel additive color as sampled from a photograph.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Colorful converts c into a go-colorful color for colorspace math.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255.0,
		G: float64(c.G) / 255.0,
		B: float64(c.B) / 255.0,
	}
}

// Lab returns the CIE Lab rendition of c (sRGB, D65 reference white).
// L is scaled 0..100 as commonly printed on shade charts.
func (c RGB) Lab() (l, a, b float64) {
	l, a, b = c.Colorful().Lab()
	return l * 100, a * 100, b * 100
}

func (c RGB) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.R, c.G, c.B)
}

// Hex returns the usual #rrggbb form for HTML previews.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
