package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all retailbridge configuration.
type Config struct {
	Listen  string        `yaml:"listen"`
	Backend BackendConfig `yaml:"backend"`
	Server  ServerConfig  `yaml:"server"`
	Audit   AuditConfig   `yaml:"audit"`
}

// BackendConfig points at the commerce REST backend.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// ServerConfig is the identity the gateway reports during the MCP handshake.
type ServerConfig struct {
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	ProtocolVersion string `yaml:"protocol_version"`
}

// AuditConfig controls the tool-invocation audit log.
type AuditConfig struct {
	Enabled bool          `yaml:"enabled"`
	DBPath  string        `yaml:"db_path"`
	MaxAge  time.Duration `yaml:"max_age"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":8080",
		Backend: BackendConfig{
			BaseURL: "http://localhost:8090/Commerce",
			Timeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Name:            "retailbridge",
			Version:         "dev",
			ProtocolVersion: "2024-11-05",
		},
		Audit: AuditConfig{
			Enabled: false,
			DBPath:  "retailbridge.db",
			MaxAge:  30 * 24 * time.Hour,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
// A missing file is not an error; defaults are returned unchanged.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url must not be empty")
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %s", c.Backend.Timeout)
	}
	if c.Audit.Enabled && c.Audit.DBPath == "" {
		return fmt.Errorf("audit.db_path must not be empty when audit is enabled")
	}
	return nil
}
