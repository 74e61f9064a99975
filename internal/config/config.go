// Package config provides application-level configuration for the
// validation CLI: logging, the default validation profile, and calendar
// selection. Values load from a YAML file with environment-variable
// overrides for the common knobs.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/johnayoung/go-ohlcv-validator/internal/logger"
	"github.com/johnayoung/go-ohlcv-validator/internal/validation"
)

// AppConfig is the complete application configuration.
type AppConfig struct {
	Logging    logger.Config      `yaml:"logging"`
	Validation *validation.Config `yaml:"validation"`

	// Profile selects a validation preset applied before the explicit
	// validation section: default, strict, lenient or minimal.
	Profile string `yaml:"profile"`

	// Calendar is the default calendar name resolved for continuity
	// checks when the command line does not name one.
	Calendar string `yaml:"calendar"`
}

// Default returns the baseline application configuration.
func Default() *AppConfig {
	return &AppConfig{
		Logging:    logger.DefaultConfig(),
		Validation: validation.DefaultConfig(),
		Profile:    "default",
	}
}

// Load reads the YAML file at path over the defaults and applies
// environment overrides. An empty path returns defaults plus overrides.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Apply the profile first so the explicit validation section
		// overrides it field by field.
		var probe struct {
			Profile string `yaml:"profile"`
		}
		if err := yaml.Unmarshal(data, &probe); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if probe.Profile != "" {
			preset, err := presetFor(probe.Profile)
			if err != nil {
				return nil, err
			}
			cfg.Validation = preset
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid validation config: %w", err)
	}
	return cfg, nil
}

func presetFor(profile string) (*validation.Config, error) {
	switch profile {
	case "", "default":
		return validation.DefaultConfig(), nil
	case "strict":
		return validation.StrictConfig(), nil
	case "lenient":
		return validation.LenientConfig(), nil
	case "minimal":
		return validation.MinimalConfig(), nil
	}
	return nil, fmt.Errorf("unknown validation profile %q", profile)
}

// applyEnvOverrides applies the supported environment variables over
// the loaded configuration.
func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("OHLCV_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("OHLCV_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("OHLCV_CALENDAR"); v != "" {
		cfg.Calendar = v
	}
	if v := os.Getenv("OHLCV_STRICT"); v != "" {
		if strict, err := strconv.ParseBool(v); err == nil {
			cfg.Validation.StrictMode = strict
		}
	}
	if v := os.Getenv("OHLCV_TIMEFRAME"); v != "" {
		cfg.Validation.Timeframe = v
	}
}
