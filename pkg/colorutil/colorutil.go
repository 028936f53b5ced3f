// Package colorutil provides shared color utilities for the bean gauge application.
package colorutil

import (
	"image/color"
)

// Common overlay colors used for debug rasters.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
)

// RGB is a color triple with named channels in the 0-255 range.
// Channels are always addressed by name; positional channel order
// (such as OpenCV's BGR storage) stays confined to the code that
// talks to the image library.
type RGB struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// Luma returns the Rec.601 luma of the color.
func (c RGB) Luma() float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// Clamped returns the color with every channel clamped to [0, 255].
func (c RGB) Clamped() RGB {
	return RGB{R: Clamp8(c.R), G: Clamp8(c.G), B: Clamp8(c.B)}
}

// Clamp8 clamps a value to the 8-bit intensity range [0, 255].
func Clamp8(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
