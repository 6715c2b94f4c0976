// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Pins     PinsConfig     `yaml:"pins"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display and rendering settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// ViewerConfig holds camera and panorama settings.
type ViewerConfig struct {
	Panoramas       []string `yaml:"panoramas"` // Image paths or URLs, cycled with Space
	FieldOfView     float32  `yaml:"field_of_view"`
	Damping         float32  `yaml:"damping"`
	DragSensitivity float32  `yaml:"drag_sensitivity"`
	ZoomSensitivity float32  `yaml:"zoom_sensitivity"`
}

// PinsConfig holds pin overlay settings.
type PinsConfig struct {
	ModelID         string        `yaml:"model_id"`
	Store           string        `yaml:"store"` // "yaml" or "sqlite"
	Path            string        `yaml:"path"`  // Directory for yaml, database file for sqlite
	Timeout         time.Duration `yaml:"timeout"`
	IsolateFailures bool          `yaml:"isolate_failures"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
		},
		Viewer: ViewerConfig{
			FieldOfView:     75,
			Damping:         0.1,
			DragSensitivity: 0.2,
			ZoomSensitivity: 0.05,
		},
		Pins: PinsConfig{
			Store:   "yaml",
			Path:    "pins",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
