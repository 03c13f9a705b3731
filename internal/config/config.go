// Package config loads editor settings from defaults, an optional TOML file,
// the environment and command-line overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// AppName names the config directory under the user config dir.
	AppName = "image-edit-mcp"

	// DefaultConfigFileName is looked up inside the app config directory.
	DefaultConfigFileName = "config.toml"

	// EnvLogLevel overrides [logger].level when set.
	EnvLogLevel = "IMAGE_EDIT_MCP_LOG_LEVEL"

	DefaultLogLevel       = "info"
	DefaultMaxHistory     = 50
	DefaultZoomStep       = 1.25
	DefaultMaxPixels      = 100_000_000
	DefaultJPEGQuality    = 95
	DefaultPNGCompression = "default"
	DefaultGIFColors      = 256
)

// Config holds the application's combined configuration.
type Config struct {
	Logger LoggerConfig `toml:"logger"`
	Editor EditorConfig `toml:"editor"`
	Output OutputConfig `toml:"output"`
}

// LoggerConfig controls diagnostic output. Logs always go to stderr since
// stdout carries the protocol.
type LoggerConfig struct {
	Level string `toml:"level"`
}

// EditorConfig holds document and history settings.
type EditorConfig struct {
	// MaxHistory caps the number of retained snapshots per document.
	MaxHistory int `toml:"max_history"`

	// ZoomStep is the multiplicative factor used by zoom in/out.
	ZoomStep float64 `toml:"zoom_step"`

	// MaxPixels caps width*height of images accepted by open.
	MaxPixels int64 `toml:"max_pixels"`
}

// OutputConfig holds encoder settings used by save and export.
type OutputConfig struct {
	JPEGQuality int `toml:"jpeg_quality"`

	// PNGCompression is one of "default", "none", "best-speed", "best-compression".
	PNGCompression string `toml:"png_compression"`

	GIFColors int `toml:"gif_colors"`
}

// NewDefaultConfig creates a Config populated with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: LoggerConfig{Level: DefaultLogLevel},
		Editor: EditorConfig{
			MaxHistory: DefaultMaxHistory,
			ZoomStep:   DefaultZoomStep,
			MaxPixels:  DefaultMaxPixels,
		},
		Output: OutputConfig{
			JPEGQuality:    DefaultJPEGQuality,
			PNGCompression: DefaultPNGCompression,
			GIFColors:      DefaultGIFColors,
		},
	}
}

// DefaultPath returns the config file location under the user config
// directory, or "" when that directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// Load builds the effective configuration. An empty path falls back to
// DefaultPath; a missing file is not an error. Values that fail validation are
// reset to their defaults and reported through the returned warnings.
func Load(path string) (*Config, []string, error) {
	cfg := NewDefaultConfig()

	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, nil, err
		}
	}

	cfg.applyEnv()
	warnings := cfg.validate()
	return cfg, warnings, nil
}

// loadFile decodes path over the current values.
func (c *Config) loadFile(path string) error {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat config file '%s': %w", path, err)
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("failed to parse config file '%s': %w", path, err)
	}
	return nil
}

// applyEnv applies environment overrides.
func (c *Config) applyEnv() {
	if lvl := strings.TrimSpace(os.Getenv(EnvLogLevel)); lvl != "" {
		c.Logger.Level = lvl
	}
}

// validate resets invalid values to defaults and describes each reset.
func (c *Config) validate() []string {
	defaults := NewDefaultConfig()
	var warnings []string

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "warning", "error", "err":
	default:
		warnings = append(warnings, fmt.Sprintf("invalid logger.level %q, using %q", c.Logger.Level, defaults.Logger.Level))
		c.Logger.Level = defaults.Logger.Level
	}

	if c.Editor.MaxHistory <= 0 {
		warnings = append(warnings, fmt.Sprintf("invalid editor.max_history %d, using %d", c.Editor.MaxHistory, defaults.Editor.MaxHistory))
		c.Editor.MaxHistory = defaults.Editor.MaxHistory
	}
	if c.Editor.ZoomStep <= 1 || math.IsInf(c.Editor.ZoomStep, 0) || math.IsNaN(c.Editor.ZoomStep) {
		warnings = append(warnings, fmt.Sprintf("invalid editor.zoom_step %v, using %v", c.Editor.ZoomStep, defaults.Editor.ZoomStep))
		c.Editor.ZoomStep = defaults.Editor.ZoomStep
	}
	if c.Editor.MaxPixels <= 0 {
		warnings = append(warnings, fmt.Sprintf("invalid editor.max_pixels %d, using %d", c.Editor.MaxPixels, defaults.Editor.MaxPixels))
		c.Editor.MaxPixels = defaults.Editor.MaxPixels
	}

	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		warnings = append(warnings, fmt.Sprintf("invalid output.jpeg_quality %d, using %d", c.Output.JPEGQuality, defaults.Output.JPEGQuality))
		c.Output.JPEGQuality = defaults.Output.JPEGQuality
	}
	switch c.Output.PNGCompression {
	case "default", "none", "best-speed", "best-compression":
	default:
		warnings = append(warnings, fmt.Sprintf("invalid output.png_compression %q, using %q", c.Output.PNGCompression, defaults.Output.PNGCompression))
		c.Output.PNGCompression = defaults.Output.PNGCompression
	}
	if c.Output.GIFColors < 1 || c.Output.GIFColors > 256 {
		warnings = append(warnings, fmt.Sprintf("invalid output.gif_colors %d, using %d", c.Output.GIFColors, defaults.Output.GIFColors))
		c.Output.GIFColors = defaults.Output.GIFColors
	}

	return warnings
}
