package render

import (
	"image/color"
	"math"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorGray  = color.RGBA{100, 100, 100, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// ColorRGB is a linear floating point color.
type ColorRGB struct {
	R, G, B float64
}

// Gray returns a color with all channels set to v.
func Gray(v float64) ColorRGB {
	return ColorRGB{v, v, v}
}

// Add returns the component-wise sum.
func (c ColorRGB) Add(o ColorRGB) ColorRGB {
	return ColorRGB{c.R + o.R, c.G + o.G, c.B + o.B}
}

// Sub returns the component-wise difference.
func (c ColorRGB) Sub(o ColorRGB) ColorRGB {
	return ColorRGB{c.R - o.R, c.G - o.G, c.B - o.B}
}

// Mul returns the component-wise product.
func (c ColorRGB) Mul(o ColorRGB) ColorRGB {
	return ColorRGB{c.R * o.R, c.G * o.G, c.B * o.B}
}

// Scale multiplies every channel by s.
func (c ColorRGB) Scale(s float64) ColorRGB {
	return ColorRGB{c.R * s, c.G * s, c.B * s}
}

// Div divides every channel by s.
func (c ColorRGB) Div(s float64) ColorRGB {
	return ColorRGB{c.R / s, c.G / s, c.B / s}
}

// Clamp01 caps every channel at 1 and floors it at 0. Values above 1 are
// cut off, not tone-mapped.
func (c ColorRGB) Clamp01() ColorRGB {
	return ColorRGB{clamp01(c.R), clamp01(c.G), clamp01(c.B)}
}

func clamp01(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v > 0:
		return v
	default:
		// also catches NaN
		return 0
	}
}

// Pack clamps the color and packs it as opaque 0xAARRGGBB.
func (c ColorRGB) Pack() uint32 {
	c = c.Clamp01()
	return PackRGBA(RGB(uint8(c.R*255), uint8(c.G*255), uint8(c.B*255)))
}

// ColorRGBFrom converts any color to linear floats in [0,1].
func ColorRGBFrom(c color.Color) ColorRGB {
	r, g, b, _ := c.RGBA()
	return ColorRGB{float64(r) / 0xffff, float64(g) / 0xffff, float64(b) / 0xffff}
}

// PackRGBA packs an 8-bit color as 0xAARRGGBB.
func PackRGBA(c color.RGBA) uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// UnpackRGBA is the inverse of PackRGBA.
func UnpackRGBA(p uint32) color.RGBA {
	return color.RGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: uint8(p >> 24)}
}

// near reports whether two colors match within eps per channel.
func (c ColorRGB) near(o ColorRGB, eps float64) bool {
	return math.Abs(c.R-o.R) <= eps && math.Abs(c.G-o.G) <= eps && math.Abs(c.B-o.B) <= eps
}
