// Package config provides configuration parsing for walkbg.
// This file implements environment variable expansion for configuration values.
package config

import (
	"os"
	"regexp"
	"strings"
)

// envVarPattern matches environment variable references in configuration values.
// Supports formats:
//   - ${VAR_NAME} - standard shell-like format
//   - ${VAR_NAME:-default} - with default value if unset or empty
//   - $VAR_NAME - simple format (word characters only)
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([a-zA-Z_][a-zA-Z0-9_]*)`)

// ExpandEnv expands environment variable references in a string.
// It supports the following formats:
//   - ${VAR_NAME} - replaced with value of VAR_NAME
//   - ${VAR_NAME:-default} - replaced with VAR_NAME's value, or "default" if unset/empty
//   - $VAR_NAME - replaced with value of VAR_NAME (simple format)
//
// Unknown or unset variables without defaults are replaced with empty string.
func ExpandEnv(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Check for ${VAR} or ${VAR:-default} format
		if strings.HasPrefix(match, "${") && strings.HasSuffix(match, "}") {
			inner := match[2 : len(match)-1]

			// Check for default value syntax: VAR:-default
			if idx := strings.Index(inner, ":-"); idx >= 0 {
				varName := inner[:idx]
				defaultVal := inner[idx+2:]
				if val := os.Getenv(varName); val != "" {
					return val
				}
				return defaultVal
			}

			// Simple variable reference
			return os.Getenv(inner)
		}

		// Handle $VAR format (simple variable)
		if strings.HasPrefix(match, "$") {
			varName := match[1:]
			return os.Getenv(varName)
		}

		return match
	})
}

// ExpandEnvConfig expands environment variables in all string
// configuration values. It modifies the Config in place, expanding
// ${VAR}, ${VAR:-default} and $VAR patterns in the color, step set,
// boundary and palette fields.
func ExpandEnvConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	cfg.BGColor = ExpandEnv(cfg.BGColor)
	cfg.FGColor = ExpandEnv(cfg.FGColor)
	cfg.ActiveColor = ExpandEnv(cfg.ActiveColor)
	cfg.StepSet = ExpandEnv(cfg.StepSet)
	cfg.Boundary = ExpandEnv(cfg.Boundary)
	cfg.Palette = ExpandEnv(cfg.Palette)
}
