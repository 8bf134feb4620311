// Package config loads builder.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pagebuilder/internal/domain"
)

// FileName is the config file looked up inside the data directory.
const FileName = "builder.yaml"

// Config is the editor configuration.
type Config struct {
	DataDir     string             `yaml:"dataDir"`
	LogLevel    string             `yaml:"logLevel"`
	Autosave    string             `yaml:"autosave"` // cron spec, empty disables
	WatchDir    string             `yaml:"watchDir"` // page JSON files to live-import, empty disables
	Breakpoints []BreakpointConfig `yaml:"breakpoints"`
	DefaultPage string             `yaml:"defaultPage"`
}

// BreakpointConfig describes one device preview width.
type BreakpointConfig struct {
	Device domain.Breakpoint `yaml:"device" json:"device"`
	Width  int               `yaml:"width" json:"width"`
	Icon   string            `yaml:"icon" json:"icon"`
}

// DefaultDataDir is ~/.local/share/pagebuilder.
func DefaultDataDir() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".local", "share", "pagebuilder")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
		Autosave: "@every 30s",
		Breakpoints: []BreakpointConfig{
			{Device: domain.BreakpointDesktop, Width: 1400, Icon: "monitor"},
			{Device: domain.BreakpointTablet, Width: 800, Icon: "tablet"},
			{Device: domain.BreakpointMobile, Width: 640, Icon: "smartphone"},
		},
		DefaultPage: "Home",
	}
}

// Load reads path on top of the defaults. A missing file yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir loads builder.yaml from dir and pins DataDir to dir when the
// file does not name one.
func LoadFromDir(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		return nil, err
	}
	if cfg.DataDir == "" || cfg.DataDir == DefaultDataDir() {
		cfg.DataDir = dir
	}
	return cfg, nil
}

// Validate rejects breakpoint entries for unknown devices or without a width.
func (c *Config) Validate() error {
	seen := map[domain.Breakpoint]bool{}
	for _, bp := range c.Breakpoints {
		if !bp.Device.Valid() {
			return &domain.ValidationError{Field: "breakpoints", Message: fmt.Sprintf("unknown device %q", bp.Device)}
		}
		if bp.Width <= 0 {
			return &domain.ValidationError{Field: "breakpoints", Message: fmt.Sprintf("%s: width must be positive", bp.Device)}
		}
		if seen[bp.Device] {
			return &domain.ValidationError{Field: "breakpoints", Message: fmt.Sprintf("%s listed twice", bp.Device)}
		}
		seen[bp.Device] = true
	}
	return nil
}

// Width returns the preview width for device, or 0 when not configured.
func (c *Config) Width(device domain.Breakpoint) int {
	for _, bp := range c.Breakpoints {
		if bp.Device == device {
			return bp.Width
		}
	}
	return 0
}

// DBPath is the SQLite file inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "pagebuilder.db")
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
