// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	LogLevel string `json:"log_level"` // debug, info, warn, error
	NoColor  bool   `json:"no_color"`
}

func Default() *Config {
	return &Config{
		LogLevel: "warn",
	}
}

// ConfigPath returns the file named by VCS_CONFIG, or "" when no config
// file should be read. Repository state under .vcs/ never holds config.
func ConfigPath() string {
	return os.Getenv("VCS_CONFIG")
}

// Load reads the config named by VCS_CONFIG, falling back to defaults when
// the variable is unset.
func Load() (*Config, error) {
	path := ConfigPath()
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config %s: %w", path, err)
	}
	defer file.Close()

	config := Default()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return config, nil
}
