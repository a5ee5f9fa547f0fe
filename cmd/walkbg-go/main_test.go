package main

import (
	"os"
	"testing"

	"github.com/opd-ai/go-walkbg/internal/config"
)

func TestVersion(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestResolveConfigPath_FlagWins(t *testing.T) {
	t.Setenv(configEnvVar, "/from/env/walkbg.toml")

	path, explicit := resolveConfigPath("/from/flag/walkbg.toml")
	if path != "/from/flag/walkbg.toml" {
		t.Errorf("path = %q, want flag value", path)
	}
	if !explicit {
		t.Error("explicit = false, want true for a flag-provided path")
	}
}

func TestResolveConfigPath_EnvFallback(t *testing.T) {
	t.Setenv(configEnvVar, "/from/env/walkbg.toml")

	path, explicit := resolveConfigPath("")
	if path != "/from/env/walkbg.toml" {
		t.Errorf("path = %q, want env value", path)
	}
	if !explicit {
		t.Error("explicit = false, want true for an env-provided path")
	}
}

func TestResolveConfigPath_Default(t *testing.T) {
	t.Setenv(configEnvVar, "")

	path, explicit := resolveConfigPath("")
	if path != config.DefaultPath() {
		t.Errorf("path = %q, want default location %q", path, config.DefaultPath())
	}
	if explicit {
		t.Error("explicit = true, want false for the default location")
	}
}

func TestConfigFileNotFound(t *testing.T) {
	_, err := os.Stat("/nonexistent/walkbg/config.toml")
	if !os.IsNotExist(err) {
		t.Error("Expected IsNotExist error for non-existent file")
	}
}
