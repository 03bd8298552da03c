// Package marshal converts domain values to and from the primitives stored
// in the database.
package marshal

import (
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/julianstephens/tracker/internal/constants"
)

// EncodeColor renders c as "#rrggbb" with 8 bits per channel
func EncodeColor(c colorful.Color) string {
	return c.Clamped().Hex()
}

// DecodeColor parses a "#rrggbb" string. Anything that is not exactly six hex
// digits after trimming whitespace and the leading '#' decodes to
// constants.FallbackColor; legacy rows must never fail to load.
func DecodeColor(hex string) colorful.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return constants.FallbackColor
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return constants.FallbackColor
	}
	return colorful.Color{
		R: float64(v>>16&0xff) / 255.0,
		G: float64(v>>8&0xff) / 255.0,
		B: float64(v&0xff) / 255.0,
	}
}

// ColorFromRGB255 builds a color from 8-bit channels
func ColorFromRGB255(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255.0, G: float64(g) / 255.0, B: float64(b) / 255.0}
}
