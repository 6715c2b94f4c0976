package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Load loads configuration with priority: defaults < file < flags.
func Load() (*Config, error) {
	// Start with defaults
	cfg := Default()

	// Try to load from file (explicit path takes priority)
	configPath := ConfigPath()
	if configPath == "" {
		configPath = findConfigFile()
	}

	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", configPath, err)
		}
	}

	// Apply CLI flags (highest priority)
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would leave the viewer unusable.
func (c *Config) Validate() error {
	if len(c.Viewer.Panoramas) == 0 {
		return fmt.Errorf("no panorama configured (set viewer.panoramas or --panorama)")
	}
	if c.Viewer.FieldOfView < 10 || c.Viewer.FieldOfView > 75 {
		return fmt.Errorf("viewer.field_of_view %.1f outside [10, 75]", c.Viewer.FieldOfView)
	}
	if c.Viewer.Damping <= 0 || c.Viewer.Damping > 1 {
		return fmt.Errorf("viewer.damping %.3f outside (0, 1]", c.Viewer.Damping)
	}
	switch c.Pins.Store {
	case "yaml", "sqlite":
	default:
		return fmt.Errorf("unknown pins.store %q (want yaml or sqlite)", c.Pins.Store)
	}
	return nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		DefaultPath(),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// ConfigDir returns the OS-appropriate config directory.
func ConfigDir() string {
	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "Panoview")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Panoview")
	default: // Linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "panoview")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "panoview")
	}
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
