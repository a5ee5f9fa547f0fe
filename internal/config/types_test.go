package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/opd-ai/go-walkbg/internal/render"
	"github.com/opd-ai/go-walkbg/internal/walk"
)

func TestWalkInterval(t *testing.T) {
	tests := []struct {
		name string
		wpm  float64
		want time.Duration
	}{
		{"default cadence", 30.0, 2 * time.Second},
		{"one per second", 60.0, time.Second},
		{"two per second", 120.0, 500 * time.Millisecond},
		{"one per minute", 1.0, time.Minute},
		{"fractional", 0.5, 2 * time.Minute},
		{"zero is invalid", 0, 0},
		{"negative is invalid", -10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.WalksPerMinute = tt.wpm
			if got := cfg.WalkInterval(); got != tt.want {
				t.Errorf("WalkInterval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRules(t *testing.T) {
	cfg := DefaultConfig()
	steps, boundary, err := cfg.Rules()
	if err != nil {
		t.Fatalf("Rules failed on defaults: %v", err)
	}
	if steps != walk.StepOrthogonal {
		t.Errorf("steps = %v, want orthogonal", steps)
	}
	if boundary != walk.BoundaryClamp {
		t.Errorf("boundary = %v, want clamp", boundary)
	}

	cfg.StepSet = "diagonal"
	cfg.Boundary = "reflect"
	steps, boundary, err = cfg.Rules()
	if err != nil {
		t.Fatalf("Rules failed: %v", err)
	}
	if steps != walk.StepDiagonal || boundary != walk.BoundaryReflect {
		t.Errorf("got %v/%v, want diagonal/reflect", steps, boundary)
	}
}

func TestRulesInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StepSet = "knight"
	if _, _, err := cfg.Rules(); err == nil {
		t.Error("Rules should fail for unknown step set")
	}

	cfg = DefaultConfig()
	cfg.Boundary = "bounce"
	if _, _, err := cfg.Rules(); err == nil {
		t.Error("Rules should fail for unknown boundary")
	}
}

func TestRenderConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 99

	rc, err := cfg.RenderConfig()
	if err != nil {
		t.Fatalf("RenderConfig failed on defaults: %v", err)
	}

	if rc.CellSize != DefaultPixelsPerPoint {
		t.Errorf("CellSize = %d, want %d", rc.CellSize, DefaultPixelsPerPoint)
	}
	if rc.DotRadius != DefaultDotRadius {
		t.Errorf("DotRadius = %d, want %d", rc.DotRadius, DefaultDotRadius)
	}
	if want := render.MustParseColor(DefaultBGColor); rc.Background != want {
		t.Errorf("Background = %v, want %v", rc.Background, want)
	}
	if want := render.MustParseColor(DefaultActiveColor); rc.Active != want {
		t.Errorf("Active = %v, want %v", rc.Active, want)
	}
	if rc.Palette != render.PaletteHeat {
		t.Errorf("Palette = %v, want heat", rc.Palette)
	}
	if rc.PaletteSeed != 99 {
		t.Errorf("PaletteSeed = %d, want 99", rc.PaletteSeed)
	}
}

func TestRenderConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad background", func(c *Config) { c.BGColor = "nonsense" }},
		{"bad foreground", func(c *Config) { c.FGColor = "#12345" }},
		{"bad active", func(c *Config) { c.ActiveColor = "" }},
		{"bad palette", func(c *Config) { c.Palette = "rainbow" }},
		{"dot too large", func(c *Config) { c.DotRadius = 50 }},
		{"zero spacing", func(c *Config) { c.PixelsPerPoint = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := cfg.RenderConfig(); err == nil {
				t.Error("RenderConfig should fail")
			}
		})
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	result := Validate(&cfg)
	if len(result.Warnings) != 0 {
		t.Errorf("default config should not warn: %v", result.Warnings)
	}
}

func TestDefaultPath(t *testing.T) {
	path := DefaultPath()
	if path == "" {
		t.Skip("no user config dir in this environment")
	}
	if !strings.HasSuffix(path, filepath.Join("walkbg", "config.toml")) {
		t.Errorf("DefaultPath() = %q, want .../walkbg/config.toml", path)
	}
}
