package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/viper"
)

// ErrExists is returned by WriteDefault when the file is already there
var ErrExists = errors.New("config file already exists")

// DefaultPath returns $XDG_CONFIG_HOME/taskboard/config.yaml, falling back
// to ~/.config
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "taskboard", "config.yaml"), nil
}

// Load reads the config file at path (DefaultPath when empty) and applies
// TASKBOARD_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		// Without a home dir only defaults and env apply
		path, _ = DefaultPath()
	}

	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return Config{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Default()
	// Registering every key lets AutomaticEnv see it during Unmarshal
	v.SetDefault("endpoint", d.Endpoint)
	v.SetDefault("organization_slug", d.OrganizationSlug)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("data_dir", d.DataDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func isNotExist(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, os.ErrNotExist)
}

// WriteDefault writes the default config to path. An existing file is only
// replaced when force is set. The write is atomic.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
	}
	data, err := Default().YAML()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
