package renderer

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mazznoer/colorgrad"
)

// ColorMode selects which particle field drives the color ramp.
type ColorMode int

const (
	ColorBySpeed ColorMode = iota
	ColorByDensity
	ColorByPressure
	numColorModes
)

func (m ColorMode) String() string {
	switch m {
	case ColorBySpeed:
		return "speed"
	case ColorByDensity:
		return "density"
	case ColorByPressure:
		return "pressure"
	}
	return fmt.Sprintf("ColorMode(%d)", int(m))
}

// Next returns the following mode, wrapping around.
func (m ColorMode) Next() ColorMode {
	return (m + 1) % numColorModes
}

// ParseColorMode maps a config string to a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "speed", "":
		return ColorBySpeed, nil
	case "density":
		return ColorByDensity, nil
	case "pressure":
		return ColorByPressure, nil
	}
	return 0, fmt.Errorf("color mode %q (want speed, density, or pressure)", s)
}

// buildPalette samples the viridis gradient into a fixed lookup table so
// the per-particle color pick is an index, not a gradient evaluation.
func buildPalette(steps int) []rl.Color {
	if steps < 2 {
		steps = 2
	}
	grad := colorgrad.Viridis()
	colors := grad.Colors(uint(steps))
	pal := make([]rl.Color, len(colors))
	for i, c := range colors {
		r, g, b, a := c.RGBA()
		pal[i] = rl.Color{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	}
	return pal
}

// shade picks the palette entry for t clamped to [0, 1].
func shade(pal []rl.Color, t float64) rl.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return pal[int(t*float64(len(pal)-1))]
}
