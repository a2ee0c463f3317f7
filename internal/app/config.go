package app

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	corecmd "github.com/m3rciful/scorebot/core/cmd"
	coreconfig "github.com/m3rciful/scorebot/core/config"
	coredatabase "github.com/m3rciful/scorebot/core/database"
)

// Config is the scorebot configuration: the core sections plus the database.
type Config struct {
	coreconfig.Config `yaml:",inline"`
	Database          coredatabase.Config `yaml:"database"`
}

var _ corecmd.ConfigCarrier = (*Config)(nil)

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// LoadConfig reads path, applies environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.ReadFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.ApplyEnv(&cfg.Config); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to process database env: %w", err)
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := cfg.Database.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDatabaseConfig is LoadConfig for commands that never talk to Telegram.
func loadDatabaseConfig(path string) (coredatabase.Config, error) {
	var cfg Config
	if err := coreconfig.ReadFile(path, &cfg); err != nil {
		return coredatabase.Config{}, err
	}
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return coredatabase.Config{}, fmt.Errorf("failed to process database env: %w", err)
	}
	if err := cfg.Database.Normalize(); err != nil {
		return coredatabase.Config{}, err
	}
	return cfg.Database, nil
}
