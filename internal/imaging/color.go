package imaging

import (
	"fmt"
	"image"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#RRGGBB"
	RGB RGBColor `json:"rgb"` // RGB components
	HSL HSLColor `json:"hsl"` // HSL representation

	c colorful.Color
}

// DescribeColor renders an RGB triple with 0-255 float channels, such as a
// segment mean. Out of range values are clamped.
func DescribeColor(r, g, b float64) ColorResult {
	c := colorful.Color{R: r / 255, G: g / 255, B: b / 255}.Clamped()
	return fromColorful(c)
}

func fromColorful(c colorful.Color) ColorResult {
	r8, g8, b8 := c.RGB255()
	h, s, l := c.Hsl()
	return ColorResult{
		Hex: strings.ToUpper(c.Hex()),
		RGB: RGBColor{R: r8, G: g8, B: b8},
		HSL: HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)},
		c:   c,
	}
}

// Distance returns the CIEDE2000 perceptual distance between two colors.
// Values below about 0.02 are hard to tell apart.
func (c ColorResult) Distance(other ColorResult) float64 {
	return c.c.DistanceCIEDE2000(other.c)
}

// PixelColor is a sampled pixel, including its opacity.
type PixelColor struct {
	ColorResult
	Alpha uint8 `json:"alpha"`
}

// SampleColor returns the color at (x, y) of the source image.
//
// Coordinates are 0-based from the top-left corner of img.Bounds().
func SampleColor(img image.Image, x, y int) (*PixelColor, error) {
	bounds := img.Bounds()
	px, py := bounds.Min.X+x, bounds.Min.Y+y
	if x < 0 || y < 0 || px >= bounds.Max.X || py >= bounds.Max.Y {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	src := img.At(px, py)
	_, _, _, a := src.RGBA()
	// MakeColor rejects fully transparent pixels; report them as black.
	c, ok := colorful.MakeColor(src)
	if !ok {
		c = colorful.Color{}
	}
	return &PixelColor{ColorResult: fromColorful(c), Alpha: uint8(a >> 8)}, nil
}
