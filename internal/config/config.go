// Package config holds interpreter-wide configuration: resource limits,
// logging categories, and scheduler fairness knobs. None of it is
// script-visible; it governs how the host-embedded Interpreter behaves.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"slipinterp/internal/logging"
)

// Config holds all interpreter configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	Logging   LoggingConfig   `yaml:"logging"`
	Limits    Limits          `yaml:"limits"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "slip",
		Version: "0.1.0",

		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},

		Limits: Limits{
			MaxEvalDepth:         2048,
			MaxSteps:             10_000_000,
			MaxSideEffectQueue:   1_000_000,
			DefaultSchemeTimeout: "30s",
		},

		Scheduler: SchedulerConfig{
			ReadyQueueQuantum:      0,
			MaxConcurrentHostCalls: 8,
			DefaultSleepResolution: "1ms",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			cfg.applyLogging()
			return cfg, nil
		}
		logging.BootError("failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.applyLogging()
	logging.Boot("config loaded: name=%s version=%s", cfg.Name, cfg.Version)
	return cfg, nil
}

// applyLogging pushes the Logging section into the logging package's
// own configuration, so every Logger created after Load reflects it.
func (c *Config) applyLogging() {
	logging.Configure(logging.Options{
		DebugMode:  c.Logging.DebugMode,
		Level:      c.Logging.Level,
		Categories: c.Logging.Categories,
	})
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides on top of the
// loaded (or default) configuration.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SLIP_DEBUG"); v == "1" || v == "true" {
		c.Logging.DebugMode = true
	}
	if v := os.Getenv("SLIP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// GetDefaultSchemeTimeout returns the default scheme handler timeout.
func (c *Config) GetDefaultSchemeTimeout() time.Duration {
	d, err := time.ParseDuration(c.Limits.DefaultSchemeTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetDefaultSleepResolution returns the scheduler's minimum sleep grain.
func (c *Config) GetDefaultSleepResolution() time.Duration {
	d, err := time.ParseDuration(c.Scheduler.DefaultSleepResolution)
	if err != nil {
		return time.Millisecond
	}
	return d
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Limits.MaxEvalDepth < 8 {
		return fmt.Errorf("limits.max_eval_depth must be >= 8")
	}
	if c.Limits.MaxSteps < 1 {
		return fmt.Errorf("limits.max_steps must be >= 1")
	}
	if c.Scheduler.MaxConcurrentHostCalls < 1 {
		return fmt.Errorf("scheduler.max_concurrent_host_calls must be >= 1")
	}
	return nil
}
