package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EraseConfig controls the overwrite engine and the job coordinator.
type EraseConfig struct {
	Passes        int     `yaml:"passes"`
	BufferSize    int     `yaml:"buffer_size"`
	ProgressEvery int     `yaml:"progress_every"`
	QueueCapacity int     `yaml:"queue_capacity"`
	RNG           string  `yaml:"rng"` // "fast" or "crypto"
	MaxSpeedMBps  float64 `yaml:"max_speed_mbps"`
}

// SecurityConfig guards which paths may be destroyed.
type SecurityConfig struct {
	ProtectedPaths []string `yaml:"protected_paths"`
	AllowSymlinks  bool     `yaml:"allow_symlinks"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ReportingConfig struct {
	Enabled   bool   `yaml:"enabled"`
	LocalPath string `yaml:"local_path"`
}

type Config struct {
	Erase     EraseConfig     `yaml:"erase"`
	Security  SecurityConfig  `yaml:"security"`
	Logging   LoggingConfig   `yaml:"logging"`
	Reporting ReportingConfig `yaml:"reporting"`
}

// Default returns the stock configuration: three random passes,
// a 4 KiB write buffer and an event every 100th buffer write.
func Default() *Config {
	return &Config{
		Erase: EraseConfig{
			Passes:        3,
			BufferSize:    4096,
			ProgressEvery: 100,
			QueueCapacity: 1000,
			RNG:           "fast",
			MaxSpeedMBps:  0, // unlimited
		},
		Security: SecurityConfig{
			ProtectedPaths: []string{
				"/boot",
				"/etc",
				"/usr",
				"/bin",
				"/sbin",
				"/lib",
			},
			AllowSymlinks: false,
		},
		Logging: LoggingConfig{
			Level: "INFO",
			File:  "",
		},
		Reporting: ReportingConfig{
			Enabled:   false,
			LocalPath: "./reports",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults
// when the path is empty or missing. Environment variables override
// single values after the file is applied.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides picks up FILEERASER_* variables, typically loaded
// from a .env file by the entrypoint.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FILEERASER_PASSES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Erase.Passes = n
		}
	}
	if v := os.Getenv("FILEERASER_RNG"); v != "" {
		cfg.Erase.RNG = v
	}
	if v := os.Getenv("FILEERASER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FILEERASER_REPORT_DIR"); v != "" {
		cfg.Reporting.Enabled = true
		cfg.Reporting.LocalPath = v
	}
}

// Validate checks the configuration for sane values.
func Validate(cfg *Config) error {
	if cfg.Erase.Passes <= 0 || cfg.Erase.Passes > 35 {
		return fmt.Errorf("passes must be between 1 and 35, got %d", cfg.Erase.Passes)
	}

	if cfg.Erase.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", cfg.Erase.BufferSize)
	}
	if cfg.Erase.BufferSize > 16*1024*1024 {
		return fmt.Errorf("buffer size too large (max 16MB), got %d", cfg.Erase.BufferSize)
	}

	if cfg.Erase.ProgressEvery <= 0 {
		return fmt.Errorf("progress interval must be positive, got %d", cfg.Erase.ProgressEvery)
	}

	if cfg.Erase.QueueCapacity <= 0 {
		return fmt.Errorf("queue capacity must be positive, got %d", cfg.Erase.QueueCapacity)
	}

	switch cfg.Erase.RNG {
	case "fast", "crypto":
	default:
		return fmt.Errorf("invalid rng policy: %s", cfg.Erase.RNG)
	}

	if cfg.Erase.MaxSpeedMBps < 0 {
		return fmt.Errorf("max speed cannot be negative, got %f", cfg.Erase.MaxSpeedMBps)
	}
	if cfg.Erase.MaxSpeedMBps > 1000 {
		return fmt.Errorf("max speed too high (max 1000MB/s), got %f", cfg.Erase.MaxSpeedMBps)
	}

	validLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	for _, path := range cfg.Security.ProtectedPaths {
		if path == "" {
			return fmt.Errorf("empty protected path")
		}

		absPath := filepath.Clean(path)
		if absPath == "" || absPath == "." || absPath == "/" {
			return fmt.Errorf("invalid protected path: %s", path)
		}
	}

	return nil
}

// Save writes the configuration to a YAML file.
func Save(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
