// Package config loads the server configuration from a TOML file and
// manages the user's provider settings document.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// ServerConfig is the static server configuration. Fields missing from the
// TOML file keep their defaults.
type ServerConfig struct {
	ListenAddr            string `toml:"listen_addr"`
	DataDir               string `toml:"data_dir"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
}

// DefaultServerConfig returns the configuration used when no config file
// exists.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ListenAddr:            ":8000",
		DataDir:               "data",
		RequestTimeoutSeconds: 60,
	}
}

// LoadServerConfig reads the TOML config at path, falling back to defaults
// when the file does not exist. A present but unparsable file is an error.
func LoadServerConfig(path string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse server config: %w", err)
	}
	return cfg, nil
}

// RequestTimeout returns the outbound provider call timeout.
func (c *ServerConfig) RequestTimeout() time.Duration {
	if c.RequestTimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}
