// Package led provides the indicator port and the RGBW color model.
package led

import (
	"fmt"
	"time"
)

// MaxLevel is the top of the channel range.
const MaxLevel = 1023

// Color is an RGBW color with channels in 0..MaxLevel.
type Color struct {
	R, G, B, W int
}

// RGBW mixes a color from its channels, clamping each to 0..MaxLevel.
func RGBW(r, g, b, w int) Color {
	return Color{R: level(r), G: level(g), B: level(b), W: level(w)}
}

// Mono returns a color with every channel at brightness b.
func Mono(b int) Color {
	return RGBW(b, b, b, b)
}

// White returns a color using only the white channel.
func White(w int) Color {
	return RGBW(0, 0, 0, w)
}

// String formats the color as "r g b w".
func (c Color) String() string {
	return fmt.Sprintf("%d %d %d %d", c.R, c.G, c.B, c.W)
}

func level(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}

// Indicator drives the status light.
type Indicator interface {
	// Set fades to color over fade and holds it.
	Set(c Color, fade time.Duration)

	// Flash shows color for d, then returns to the held color.
	Flash(c Color, d time.Duration)
}
