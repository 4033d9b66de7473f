package config

import (
	"fmt"
)

// ApplyProfile applies a named erase profile to the configuration.
func ApplyProfile(cfg *Config, profile string) error {
	switch profile {
	case "quick":
		cfg.Erase.Passes = 1
		cfg.Erase.RNG = "fast"
		cfg.Erase.MaxSpeedMBps = 0
	case "standard":
		cfg.Erase.Passes = 3
		cfg.Erase.RNG = "fast"
		cfg.Erase.MaxSpeedMBps = 0
	case "paranoid":
		cfg.Erase.Passes = 7
		cfg.Erase.RNG = "crypto"
		cfg.Erase.MaxSpeedMBps = 0
	case "gentle":
		// Background-friendly: capped write rate, default passes.
		cfg.Erase.Passes = 3
		cfg.Erase.RNG = "fast"
		cfg.Erase.MaxSpeedMBps = 25
	default:
		return fmt.Errorf("unknown profile: %s", profile)
	}
	return nil
}
