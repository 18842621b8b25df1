// Package config loads the client settings from the config file, the
// environment and command line flags.
package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. TASKBOARD_ENDPOINT
const EnvPrefix = "TASKBOARD"

// Config is the effective client configuration
type Config struct {
	// Endpoint is the GraphQL URL
	Endpoint string `mapstructure:"endpoint"`

	// OrganizationSlug overrides the slug kept in the local store
	OrganizationSlug string `mapstructure:"organization_slug"`

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration `mapstructure:"timeout"`

	LogFile string `mapstructure:"log_file"`
	DataDir string `mapstructure:"data_dir"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Endpoint: "http://localhost:8000/graphql/",
	}
}

// fileConfig is the on-disk shape. Durations are written as "30s"; zero is
// "0s" since viper cannot decode an empty duration.
type fileConfig struct {
	Endpoint         string `yaml:"endpoint"`
	OrganizationSlug string `yaml:"organization_slug"`
	Timeout          string `yaml:"timeout"`
	LogFile          string `yaml:"log_file"`
	DataDir          string `yaml:"data_dir"`
}

// YAML renders c in config file form
func (c Config) YAML() ([]byte, error) {
	fc := fileConfig{
		Endpoint:         c.Endpoint,
		OrganizationSlug: c.OrganizationSlug,
		LogFile:          c.LogFile,
		DataDir:          c.DataDir,
		Timeout:          c.Timeout.String(),
	}
	return yaml.Marshal(fc)
}
