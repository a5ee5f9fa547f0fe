// Package config provides configuration data structures for walkbg.
// It defines the TOML file schema, typed accessors for the walk and
// render packages, and validation of parsed values.
package config

import (
	"time"

	"github.com/opd-ai/go-walkbg/internal/render"
	"github.com/opd-ai/go-walkbg/internal/walk"
)

// Config represents the complete walkbg configuration. String-valued
// fields keep their file spelling; the typed accessors below convert
// them, and Validate reports any that do not parse.
type Config struct {
	// WalksPerMinute sets the walk cadence. 30 means one step every
	// two seconds.
	WalksPerMinute float64 `toml:"walks_per_minute"`
	// PixelsPerPoint is the pixel spacing between adjacent grid dots.
	PixelsPerPoint int `toml:"pixels_per_point"`
	// DotRadius is the dot radius in pixels. 0 draws single pixels.
	DotRadius int `toml:"dot_radius"`
	// BGColor is the frame background color.
	BGColor string `toml:"bg_color"`
	// FGColor is the color of unvisited dots and the base of the heat ramp.
	FGColor string `toml:"fg_color"`
	// ActiveColor marks the walker's current cell.
	ActiveColor string `toml:"active_color"`
	// Seed fixes the random walk for reproducible runs.
	// 0 derives a seed from the clock at startup.
	Seed int64 `toml:"seed"`
	// StepSet selects the walker's move set (orthogonal, diagonal).
	StepSet string `toml:"step_set"`
	// Boundary selects edge behavior (clamp, reflect, wrap).
	Boundary string `toml:"boundary"`
	// StepsPerFrame advances the walker several cells per rendered frame.
	StepsPerFrame int `toml:"steps_per_frame"`
	// Palette selects dot coloring (heat, mono, random).
	Palette string `toml:"palette"`
	// TrailLength bounds the recent-positions overlay. 0 disables it.
	TrailLength int `toml:"trail_length"`
	// WatchConfig reloads this file automatically when it changes on disk.
	WatchConfig bool `toml:"watch_config"`
}

// WalkInterval converts the cadence into the delay between walk steps.
// A non-positive cadence yields 0, which callers treat as invalid.
func (c *Config) WalkInterval() time.Duration {
	if c.WalksPerMinute <= 0 {
		return 0
	}
	return time.Duration(float64(time.Minute) / c.WalksPerMinute)
}

// Rules parses the step set and boundary policy fields.
func (c *Config) Rules() (walk.StepSet, walk.BoundaryPolicy, error) {
	steps, err := walk.ParseStepSet(c.StepSet)
	if err != nil {
		return 0, 0, err
	}
	boundary, err := walk.ParseBoundaryPolicy(c.Boundary)
	if err != nil {
		return 0, 0, err
	}
	return steps, boundary, nil
}

// PaletteMode parses the palette field.
func (c *Config) PaletteMode() (render.PaletteMode, error) {
	return render.ParsePaletteMode(c.Palette)
}

// RenderConfig converts the rendering fields into a render.Config.
// The result has already passed render-side validation.
func (c *Config) RenderConfig() (render.Config, error) {
	bg, err := render.ParseColor(c.BGColor)
	if err != nil {
		return render.Config{}, err
	}
	fg, err := render.ParseColor(c.FGColor)
	if err != nil {
		return render.Config{}, err
	}
	active, err := render.ParseColor(c.ActiveColor)
	if err != nil {
		return render.Config{}, err
	}
	mode, err := c.PaletteMode()
	if err != nil {
		return render.Config{}, err
	}
	rc := render.Config{
		CellSize:    c.PixelsPerPoint,
		DotRadius:   c.DotRadius,
		Background:  bg,
		Foreground:  fg,
		Active:      active,
		Palette:     mode,
		PaletteSeed: c.Seed,
	}
	if err := rc.Validate(); err != nil {
		return render.Config{}, err
	}
	return rc, nil
}

// Validate checks if the Config has valid values. It returns an error
// describing all validation failures, or nil if the config is valid.
// For detailed validation results including warnings, use the
// package-level Validate function.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}
