// Package config provides configuration parsing and validation for walkbg.
// This file implements comprehensive validation for configuration values.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/opd-ai/go-walkbg/internal/render"
	"github.com/opd-ai/go-walkbg/internal/walk"
)

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues (e.g., suspicious values).
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}

	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Merge combines another ValidationResult into this one.
func (vr *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	vr.Errors = append(vr.Errors, other.Errors...)
	vr.Warnings = append(vr.Warnings, other.Warnings...)
}

// Validate performs comprehensive validation of a Config.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}
	if cfg == nil {
		result.AddError("config", "config is nil")
		return result
	}

	validateCadence(cfg, result)
	validateGeometry(cfg, result)
	validateColors(cfg, result)
	validateWalk(cfg, result)

	return result
}

// validateCadence validates the walk timing settings.
func validateCadence(cfg *Config, result *ValidationResult) {
	if cfg.WalksPerMinute <= 0 {
		result.AddError("walks_per_minute",
			fmt.Sprintf("must be positive, got %g", cfg.WalksPerMinute))
		return
	}

	// Warn on very fast cadences (< 10ms between steps)
	if cfg.WalkInterval() < 10*time.Millisecond {
		result.AddWarning("walks_per_minute",
			fmt.Sprintf("very fast cadence %g may cause high CPU usage", cfg.WalksPerMinute))
	}

	// Warn on very slow cadences (> 1 hour between steps)
	if cfg.WalkInterval() > time.Hour {
		result.AddWarning("walks_per_minute",
			fmt.Sprintf("very slow cadence %g", cfg.WalksPerMinute))
	}
}

// validateGeometry validates the grid spacing and dot size settings.
func validateGeometry(cfg *Config, result *ValidationResult) {
	if cfg.PixelsPerPoint < 1 {
		result.AddError("pixels_per_point",
			fmt.Sprintf("must be at least 1, got %d", cfg.PixelsPerPoint))
	}
	if cfg.DotRadius < 0 {
		result.AddError("dot_radius",
			fmt.Sprintf("must be non-negative, got %d", cfg.DotRadius))
	}

	// Dots larger than the grid spacing overlap their neighbors
	if cfg.PixelsPerPoint >= 1 && cfg.DotRadius >= 0 && cfg.DotRadius*2 > cfg.PixelsPerPoint {
		result.AddError("dot_radius",
			fmt.Sprintf("dot diameter %d exceeds pixels_per_point %d",
				cfg.DotRadius*2, cfg.PixelsPerPoint))
	}

	// Validate spacing is reasonable
	const maxSpacing = 1000
	if cfg.PixelsPerPoint > maxSpacing {
		result.AddWarning("pixels_per_point",
			fmt.Sprintf("unusually large value %d", cfg.PixelsPerPoint))
	}
}

// validateColors validates the three color fields.
func validateColors(cfg *Config, result *ValidationResult) {
	fields := []struct {
		name  string
		value string
	}{
		{"bg_color", cfg.BGColor},
		{"fg_color", cfg.FGColor},
		{"active_color", cfg.ActiveColor},
	}
	for _, f := range fields {
		if _, err := render.ParseColor(f.value); err != nil {
			result.AddError(f.name, err.Error())
		}
	}

	// Identical foreground and background makes every dot invisible
	bg, bgErr := render.ParseColor(cfg.BGColor)
	fg, fgErr := render.ParseColor(cfg.FGColor)
	if bgErr == nil && fgErr == nil && bg == fg {
		result.AddWarning("fg_color",
			"matches bg_color; dots will be invisible")
	}
}

// validateWalk validates the walker rule and per-frame settings.
func validateWalk(cfg *Config, result *ValidationResult) {
	if _, err := walk.ParseStepSet(cfg.StepSet); err != nil {
		result.AddError("step_set", err.Error())
	}
	if _, err := walk.ParseBoundaryPolicy(cfg.Boundary); err != nil {
		result.AddError("boundary", err.Error())
	}
	if _, err := render.ParsePaletteMode(cfg.Palette); err != nil {
		result.AddError("palette", err.Error())
	}

	if cfg.StepsPerFrame < 1 {
		result.AddError("steps_per_frame",
			fmt.Sprintf("must be at least 1, got %d", cfg.StepsPerFrame))
	}
	if cfg.TrailLength < 0 {
		result.AddError("trail_length",
			fmt.Sprintf("must be non-negative, got %d", cfg.TrailLength))
	}

	const maxStepsPerFrame = 10000
	if cfg.StepsPerFrame > maxStepsPerFrame {
		result.AddWarning("steps_per_frame",
			fmt.Sprintf("unusually large value %d", cfg.StepsPerFrame))
	}
}

// ValidateConfig is a convenience function to validate a Config.
// Returns nil if the config is valid, or an error describing validation failures.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	return Validate(cfg).Error()
}
