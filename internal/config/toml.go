// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Clicker ClickerConfig `toml:"clicker"`
	Log     LogConfig     `toml:"log"`
	Report  ReportConfig  `toml:"report"`
	Hotkeys HotkeyConfig  `toml:"hotkeys"`
}

// ClickerConfig maps the initial values of the click inputs.
type ClickerConfig struct {
	Count    *int `toml:"count"`
	Interval *int `toml:"interval"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	Path  *string `toml:"path"`
}

// ReportConfig maps report output settings.
type ReportConfig struct {
	Dir *string `toml:"dir"`
}

// HotkeyConfig maps global hotkey settings.
type HotkeyConfig struct {
	Global *bool `toml:"global"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
