// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Stats    StatsConfig    `toml:"stats"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	User         *string  `toml:"user"`
	MinTable     *int     `toml:"min-table"`
	MaxTable     *int     `toml:"max-table"`
	PerQuestion  *float64 `toml:"per-question"`
	PerQFloor    *float64 `toml:"per-question-floor"`
	PerQCeiling  *float64 `toml:"per-question-ceiling"`
	TotalSeconds *int     `toml:"session-seconds"`
	TimerPolicy  *string  `toml:"timer-policy"`
	CarryOver    *bool    `toml:"carry-over"`
	GraceMs      *int     `toml:"grace-ms"`
	WebhookURL   *string  `toml:"webhook-url"`
}

// StatsConfig maps stats-related settings.
type StatsConfig struct {
	Last        *int `toml:"last"`
	CurveWindow *int `toml:"curve-window"`
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
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
