// Package config loads sokodle settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file settings.
const (
	EnvDB        = "SOKODLE_DB"
	EnvAddr      = "SOKODLE_ADDR"
	EnvRedisAddr = "SOKODLE_REDIS_ADDR"
	EnvLogLevel  = "SOKODLE_LOG_LEVEL"
)

// Config holds the settings shared by every command.
type Config struct {
	// DBPath is the SQLite database file. Empty means the default path
	// under ~/.sokodle.
	DBPath   string `yaml:"db"`
	LogLevel string `yaml:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string        `yaml:"log_format"`
	Server    ServerConfig  `yaml:"server"`
	Session   SessionConfig `yaml:"session"`
	// ShareURL is appended to share text when set.
	ShareURL string `yaml:"share_url"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// SessionConfig selects where server-side play sessions live. An empty
// RedisAddr keeps them in memory.
type SessionConfig struct {
	RedisAddr string        `yaml:"redis_addr"`
	Prefix    string        `yaml:"prefix"`
	TTL       time.Duration `yaml:"ttl"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "text",
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			Prefix: "sokodle:session:",
			TTL:    24 * time.Hour,
		},
	}
}

// DefaultPath returns ~/.sokodle/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sokodle", "config.yaml"), nil
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error unless the path
// was given explicitly.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv(os.LookupEnv)
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvDB); ok && v != "" {
		c.DBPath = v
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvRedisAddr); ok {
		c.Session.RedisAddr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
}
