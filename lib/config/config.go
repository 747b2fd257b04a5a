// Copyright 2026 The Burrow Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Config is the configuration for a burrowctl invocation or an
// embedding daemon.
type Config struct {
	// Environment identifies the deployment type.
	Environment Environment `yaml:"environment"`

	// DataRoot is the base directory under which drive storage folders
	// are created when a drive is opened by name rather than by
	// explicit path.
	DataRoot string `yaml:"data_root"`

	// ReplicationListen is the address (host:port) the daemon listens
	// on for incoming replication connections. Empty disables
	// accepting inbound replication; the process can still replicate
	// outbound as a client.
	ReplicationListen string `yaml:"replication_listen"`

	// LogLevel is the minimum slog level to emit: "debug", "info",
	// "warn", or "error".
	LogLevel string `yaml:"log_level"`

	// EnvironmentOverrides contains per-environment overrides applied
	// after the base config loads.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	DataRoot          *string `yaml:"data_root,omitempty"`
	ReplicationListen *string `yaml:"replication_listen,omitempty"`
	LogLevel          *string `yaml:"log_level,omitempty"`
}

// Default returns the default configuration. These defaults exist
// primarily to give every field a sensible zero-value, not as a
// fallback — the config file is still required for [Load].
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Environment:       Development,
		DataRoot:          filepath.Join(homeDir, ".local", "share", "burrow"),
		ReplicationListen: "",
		LogLevel:          "info",
	}
}

// Load loads configuration from the BURROW_CONFIG environment variable.
//
// This is the only way to load configuration without an explicit path.
// There is no fallback — if BURROW_CONFIG is unset, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("BURROW_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("BURROW_CONFIG environment variable not set; " +
			"set it to the path of your burrow.yaml config file, or use --config")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The config
// file is the single source of truth; environment variables besides
// BURROW_CONFIG do not override its values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}
	if overrides.DataRoot != nil {
		c.DataRoot = *overrides.DataRoot
	}
	if overrides.ReplicationListen != nil {
		c.ReplicationListen = *overrides.ReplicationListen
	}
	if overrides.LogLevel != nil {
		c.LogLevel = *overrides.LogLevel
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// DataRoot.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"BURROW_ROOT": c.DataRoot,
		"HOME":        os.Getenv("HOME"),
	}
	c.DataRoot = expandVars(c.DataRoot, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		return fmt.Errorf("invalid environment: %s", c.Environment)
	}
	if c.DataRoot == "" {
		return fmt.Errorf("data_root is required")
	}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("log_level must be one of: %v", validLogLevels)
	}
	return nil
}

// EnsureDataRoot creates DataRoot if it does not exist.
func (c *Config) EnsureDataRoot() error {
	if err := os.MkdirAll(c.DataRoot, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", c.DataRoot, err)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
