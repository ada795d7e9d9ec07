// Package config loads the application's TOML configuration
// (spec.md §6, "Produced — Config file"). Missing file or missing keys
// fall back to Default(); a malformed file is a warning, never fatal
// (SPEC_FULL.md §7).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the settings spec.md describes as an external
// collaborator, plus the logging settings SPEC_FULL.md §4.10 adds.
type Config struct {
	ScreenshotKey  string  `mapstructure:"screenshot_key"`
	HDRWhitepoint  float32 `mapstructure:"hdr_whitepoint"`
	ScreenshotDir  string  `mapstructure:"screenshot_dir"`
	LogLevel       string  `mapstructure:"log_level"`
	LogDir         string  `mapstructure:"log_dir"`
	LogMaxSizeMB   int     `mapstructure:"log_max_size_mb"`
	LogMaxBackups  int     `mapstructure:"log_max_backups"`
}

// Default returns the all-defaults configuration described in
// SPEC_FULL.md §4.9.
func Default() *Config {
	pictures, err := os.UserHomeDir()
	if err != nil {
		pictures = "."
	}
	return &Config{
		ScreenshotKey: "PrintScreen",
		HDRWhitepoint: 6.25,
		ScreenshotDir: filepath.Join(pictures, "Pictures", "Screenshots"),
		LogLevel:      "info",
		LogDir:        filepath.Join(pictures, "AppData", "Roaming", "hdrsnip", "logs"),
		LogMaxSizeMB:  50,
		LogMaxBackups: 3,
	}
}

// Load reads a TOML config file at path, overlaying it on Default().
// A missing file is not an error. Unmarshal errors bubble up so the
// caller can decide whether to log-and-continue (SPEC_FULL.md §7).
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := v.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}

	return cfg, nil
}

// DefaultPath returns the conventional Windows config file location.
func DefaultPath() string {
	appData, err := os.UserConfigDir()
	if err != nil {
		appData = "."
	}
	return filepath.Join(appData, "hdrsnip", "config.toml")
}
