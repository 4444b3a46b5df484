// Package colorspace provides the color conversions used to rank album covers:
// RGB to HSV and a weighted luminosity.
package colorspace

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Luminosity channel weights, in thousandths.
const (
	lumRed   = 241
	lumGreen = 691
	lumBlue  = 68
)

// RGB is an 8-bit per channel color.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// HSV is a hue/saturation/value view of an RGB color.
// H is in degrees [0,360), S and V are percentages [0,100].
type HSV struct {
	H float64
	S float64
	V float64
}

// Luminosity returns the weighted channel sum 0.241r + 0.691g + 0.068b.
// Channels are on the 0..255 scale, so the result is too. The sum is taken
// on integer weights and divided once, so whole results come out exact.
func Luminosity(r, g, b float64) float64 {
	return (r*lumRed + g*lumGreen + b*lumBlue) / 1000
}

// LuminositySqrt returns the square root of Luminosity. It is only used by the
// step key and is not interchangeable with Luminosity.
func LuminositySqrt(r, g, b float64) float64 {
	return math.Sqrt(Luminosity(r, g, b))
}

// ToHSV converts 0..255 channels to HSV.
// Hue is 0 for achromatic colors, saturation is 0 for black. Channels stay on
// the 0..255 scale until the final division so whole hues are exact.
func ToHSV(r, g, b float64) HSV {
	cmax := max(r, g, b)
	cmin := min(r, g, b)
	diff := cmax - cmin

	var h, s float64
	switch {
	case cmax == cmin:
		h = 0
	case cmax == r:
		h = math.Mod(60*(g-b)/diff+360, 360)
	case cmax == g:
		h = math.Mod(60*(b-r)/diff+120, 360)
	default:
		h = math.Mod(60*(r-g)/diff+240, 360)
	}

	if cmax != 0 {
		s = diff * 100 / cmax
	}

	return HSV{H: h, S: s, V: cmax * 100 / 255}
}

// RGB converts back to 8-bit channels, rounding to the nearest value.
func (c HSV) RGB() RGB {
	s := c.S / 100
	v := c.V / 100
	chroma := v * s
	hp := math.Mod(c.H, 360) / 60
	x := chroma * (1 - math.Abs(math.Mod(hp, 2)-1))

	var r, g, b float64
	switch {
	case hp < 1:
		r, g, b = chroma, x, 0
	case hp < 2:
		r, g, b = x, chroma, 0
	case hp < 3:
		r, g, b = 0, chroma, x
	case hp < 4:
		r, g, b = 0, x, chroma
	case hp < 5:
		r, g, b = x, 0, chroma
	default:
		r, g, b = chroma, 0, x
	}

	m := v - chroma
	return RGB{
		R: toByte((r + m) * 255),
		G: toByte((g + m) * 255),
		B: toByte((b + m) * 255),
	}
}

// HSV returns the HSV view of the color.
func (c RGB) HSV() HSV {
	return ToHSV(float64(c.R), float64(c.G), float64(c.B))
}

// Luminosity returns the weighted luminosity of the color.
func (c RGB) Luminosity() float64 {
	return Luminosity(float64(c.R), float64(c.G), float64(c.B))
}

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string {
	return c.Colorful().Hex()
}

// Colorful converts to a go-colorful color for blending and formatting.
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// FromPacked unpacks an r<<16 | g<<8 | b value.
func FromPacked(v uint32) RGB {
	return RGB{
		R: uint8(v >> 16), //nolint:gosec // masked by the shift
		G: uint8(v >> 8),  //nolint:gosec // truncation intended
		B: uint8(v),       //nolint:gosec // truncation intended
	}
}

// Packed returns the color as r<<16 | g<<8 | b.
func (c RGB) Packed() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

func toByte(v float64) uint8 {
	return uint8(math.Round(max(0, min(255, v))))
}
