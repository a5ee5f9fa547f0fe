// Package config provides configuration parsing for walkbg.
// This file implements TOML parsing and file loading.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Parse parses TOML configuration content. Keys absent from the file
// keep their defaults. Keys the schema does not know become warnings
// rather than errors, so an older binary tolerates a newer file.
func Parse(content []byte) (*Config, []string, error) {
	cfg := DefaultConfig()
	meta, err := toml.Decode(string(content), &cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse config: %w", err)
	}

	var warnings []string
	for _, key := range meta.Undecoded() {
		warnings = append(warnings, fmt.Sprintf("unknown config key: %s", key.String()))
	}
	return &cfg, warnings, nil
}

// Load reads and parses the configuration file at path. Environment
// variable references in string values are expanded after parsing, so
// expansion results never change how the TOML itself is tokenized.
func Load(path string) (*Config, []string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, warnings, err := Parse(content)
	if err != nil {
		return nil, nil, err
	}
	ExpandEnvConfig(cfg)
	return cfg, warnings, nil
}
