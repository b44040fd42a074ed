// Package config loads the service configuration from YAML. A missing file
// yields the defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/enetx/wizard/internal/logging"
)

// Advisor configures the appliance advisor.
type Advisor struct {
	Limit   int           `yaml:"limit"`
	Delay   time.Duration `yaml:"delay"`
	Catalog string        `yaml:"catalog,omitempty"` // catalog YAML path; built-in catalog when empty
}

// Intake configures onboarding submission.
type Intake struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Sessions bounds the live wizard sessions of the server.
type Sessions struct {
	TTL      time.Duration `yaml:"ttl"`       // idle time before a session is dropped
	Max      int           `yaml:"max"`       // live sessions in total
	PerOwner int           `yaml:"per_owner"` // live sessions per caller
}

// Config is the service configuration.
type Config struct {
	LogLevel string   `yaml:"log_level"`
	Listen   string   `yaml:"listen"`
	Routes   string   `yaml:"routes,omitempty"` // route table YAML path; built-in table when empty
	Advisor  Advisor  `yaml:"advisor"`
	Intake   Intake   `yaml:"intake"`
	Sessions Sessions `yaml:"sessions"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: logging.LevelInfo,
		Listen:   ":8080",
		Advisor:  Advisor{Limit: 3},
		Intake: Intake{
			Endpoint: "http://localhost:8081/api/onboarding",
			Timeout:  10 * time.Second,
		},
		Sessions: Sessions{
			TTL:      30 * time.Minute,
			Max:      10000,
			PerOwner: 20,
		},
	}
}

// Load reads the config file at path over the defaults. An empty path or a
// missing file returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Listen == "" {
		return errors.New("config: listen address is required")
	}
	if c.Advisor.Limit < 1 {
		return fmt.Errorf("config: advisor limit must be positive, got %d", c.Advisor.Limit)
	}
	if c.Advisor.Delay < 0 {
		return errors.New("config: advisor delay must not be negative")
	}
	if c.Intake.Endpoint == "" {
		return errors.New("config: intake endpoint is required")
	}
	if c.Intake.Timeout <= 0 {
		return errors.New("config: intake timeout must be positive")
	}
	if c.Sessions.TTL <= 0 {
		return errors.New("config: session ttl must be positive")
	}
	if c.Sessions.Max < 1 || c.Sessions.PerOwner < 1 {
		return errors.New("config: session limits must be positive")
	}
	if c.Sessions.PerOwner > c.Sessions.Max {
		return fmt.Errorf("config: per-owner session limit %d exceeds total %d", c.Sessions.PerOwner, c.Sessions.Max)
	}
	return nil
}
