// Package render provides the dot-grid rendering configuration for walkbg.
package render

import (
	"fmt"
	"image/color"
)

// Config holds the dot-grid rendering options.
type Config struct {
	// CellSize is the pixel spacing between neighboring grid dots. It also
	// sets the grid resolution: an output maps to roughly one cell per
	// CellSize pixels along each axis.
	CellSize int
	// DotRadius is the radius of each dot in pixels. Zero draws single
	// pixels.
	DotRadius int
	// Background fills the frame before any dots are drawn.
	Background color.RGBA
	// Foreground is the color of unvisited dots and the base of the
	// palette ramps.
	Foreground color.RGBA
	// Active is the color of the dot under the walker.
	Active color.RGBA
	// Palette selects how visit counts map to dot colors.
	Palette PaletteMode
	// PaletteSeed shuffles per-cell colors for PaletteRandom. Other
	// palettes ignore it.
	PaletteSeed int64
}

// DefaultConfig returns a Config with the stock walkbg look: a dim dot
// lattice on near-black, heat ramp, red walker.
func DefaultConfig() Config {
	return Config{
		CellSize:   20,
		DotRadius:  2,
		Background: color.RGBA{R: 0x1A, G: 0x1A, B: 0x1A, A: 255},
		Foreground: color.RGBA{R: 0x60, G: 0x60, B: 0x60, A: 255},
		Active:     color.RGBA{R: 0xFF, G: 0x00, B: 0x00, A: 255},
		Palette:    PaletteHeat,
	}
}

// Validate checks if the Config has workable values.
func (c Config) Validate() error {
	if c.CellSize < 1 {
		return fmt.Errorf("cell size must be at least 1, got %d", c.CellSize)
	}
	if c.DotRadius < 0 {
		return fmt.Errorf("dot radius must not be negative, got %d", c.DotRadius)
	}
	if c.DotRadius*2 > c.CellSize {
		return fmt.Errorf("dot radius %d does not fit cell size %d", c.DotRadius, c.CellSize)
	}
	return nil
}
