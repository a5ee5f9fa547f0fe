package config

import (
	"os"
	"path/filepath"
)

// Default values for configuration options.
const (
	// DefaultWalksPerMinute is the default walk cadence (one step every
	// two seconds).
	DefaultWalksPerMinute = 30.0
	// DefaultPixelsPerPoint is the default grid spacing in pixels.
	DefaultPixelsPerPoint = 20
	// DefaultDotRadius is the default dot radius in pixels.
	DefaultDotRadius = 2
	// DefaultBGColor is the default background color (near black).
	DefaultBGColor = "#1a1a1a"
	// DefaultFGColor is the default dot color (dim grey).
	DefaultFGColor = "#606060"
	// DefaultActiveColor is the default walker marker color.
	DefaultActiveColor = "#ff0000"
	// DefaultStepSet is the default walker move set.
	DefaultStepSet = "orthogonal"
	// DefaultBoundary is the default edge behavior.
	DefaultBoundary = "clamp"
	// DefaultStepsPerFrame is the default number of walk steps per frame.
	DefaultStepsPerFrame = 1
	// DefaultPalette is the default dot coloring mode.
	DefaultPalette = "heat"
	// DefaultTrailLength is the default recent-positions overlay length.
	DefaultTrailLength = 500
)

// DefaultConfig returns a Config with sensible default values. A run
// with no config file uses exactly these.
func DefaultConfig() Config {
	return Config{
		WalksPerMinute: DefaultWalksPerMinute,
		PixelsPerPoint: DefaultPixelsPerPoint,
		DotRadius:      DefaultDotRadius,
		BGColor:        DefaultBGColor,
		FGColor:        DefaultFGColor,
		ActiveColor:    DefaultActiveColor,
		Seed:           0,
		StepSet:        DefaultStepSet,
		Boundary:       DefaultBoundary,
		StepsPerFrame:  DefaultStepsPerFrame,
		Palette:        DefaultPalette,
		TrailLength:    DefaultTrailLength,
		WatchConfig:    false,
	}
}

// DefaultPath returns the default config file location,
// $XDG_CONFIG_HOME/walkbg/config.toml on Linux. It returns an empty
// string when no user config directory can be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "walkbg", "config.toml")
}
