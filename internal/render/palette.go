// Package render provides visit-count to color mapping for walkbg.
package render

import (
	"fmt"
	"image/color"
)

// PaletteMode selects how a dot's color follows its cell's visit count.
type PaletteMode int

const (
	// PaletteHeat ramps from the foreground color toward a warm highlight
	// as visits accumulate.
	PaletteHeat PaletteMode = iota
	// PaletteMono draws every dot in the plain foreground color.
	PaletteMono
	// PaletteRandom gives each visited cell a stable pseudo-random color.
	PaletteRandom
)

// heatTarget is the fully-saturated end of the heat ramp.
var heatTarget = color.RGBA{R: 255, G: 200, B: 100, A: 255}

// String returns the configuration-file spelling of the palette mode.
func (m PaletteMode) String() string {
	switch m {
	case PaletteHeat:
		return "heat"
	case PaletteMono:
		return "mono"
	case PaletteRandom:
		return "random"
	default:
		return fmt.Sprintf("PaletteMode(%d)", int(m))
	}
}

// ParsePaletteMode parses the configuration-file spelling of a palette mode.
func ParsePaletteMode(s string) (PaletteMode, error) {
	switch s {
	case "heat":
		return PaletteHeat, nil
	case "mono":
		return PaletteMono, nil
	case "random":
		return PaletteRandom, nil
	default:
		return 0, fmt.Errorf("unknown palette %q (want \"heat\", \"mono\" or \"random\")", s)
	}
}

// Palette resolves the color of a grid dot from its cell position and visit
// count. It is a small value type; copying it is fine.
type Palette struct {
	mode PaletteMode
	base color.RGBA
	seed uint64
}

// NewPalette creates a palette over the given base (foreground) color. The
// seed only matters for PaletteRandom, where it shuffles the per-cell
// colors.
func NewPalette(mode PaletteMode, base color.RGBA, seed int64) Palette {
	return Palette{mode: mode, base: base, seed: uint64(seed)}
}

// Dot returns the color for the dot at cell (x, y) with the given visit
// count. Visit counts saturate their effect at 10 visits.
func (p Palette) Dot(x, y int, visits uint8) color.RGBA {
	switch p.mode {
	case PaletteMono:
		return p.base
	case PaletteRandom:
		if visits == 0 {
			return p.base
		}
		return p.cellColor(x, y)
	default:
		intensity := float64(visits) / 10
		if intensity > 1 {
			intensity = 1
		}
		return Blend(p.base, heatTarget, intensity)
	}
}

// cellColor derives a stable color for a cell from its coordinates and the
// palette seed. The mix must be reproducible across runs for a fixed seed,
// which rules out hash/maphash; a splitmix64 round is enough scrambling.
func (p Palette) cellColor(x, y int) color.RGBA {
	v := uint64(uint32(x))<<32 | uint64(uint32(y))
	v ^= p.seed
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v ^= v >> 31

	// Keep each channel at 0x40 or above so dots stay visible on the
	// dark default background.
	return color.RGBA{
		R: 0x40 + uint8(v)&0xBF,
		G: 0x40 + uint8(v>>8)&0xBF,
		B: 0x40 + uint8(v>>16)&0xBF,
		A: 255,
	}
}
