// Package config loads and validates the application's YAML configuration.
package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied after parsing.
const (
	DefaultProbeTimeout    = 5 * time.Second
	DefaultProbesPerSecond = 2.0
	DefaultCacheTTL        = 30 * time.Minute
	DefaultBaseRemote      = "origin"
	DefaultDBPath          = ".prsync.db"
	DefaultQueryState      = "open"
)

// Load reads and parses a configuration file from the given path.
func Load(path string) (*Config, error) {
	file, err := os.Open(path) //#nosec G304 -- Path is user-provided config file
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	defer func() { _ = file.Close() }()

	return LoadFromReader(file)
}

// LoadFromReader parses configuration from a reader. Unknown fields are
// rejected so typos surface instead of silently disabling features.
func LoadFromReader(r io.Reader) (*Config, error) {
	var cfg Config

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{Version: 1}
	cfg.applyDefaults()

	return cfg
}

func (c *Config) applyDefaults() {
	if len(c.Hosts.Primary) == 0 {
		c.Hosts.Primary = []string{"github.com"}
	}
	if c.Hosts.ProbeTimeout <= 0 {
		c.Hosts.ProbeTimeout = DefaultProbeTimeout
	}
	if c.Hosts.ProbesPerSecond <= 0 {
		c.Hosts.ProbesPerSecond = DefaultProbesPerSecond
	}
	if c.Hosts.CacheTTL <= 0 {
		c.Hosts.CacheTTL = DefaultCacheTTL
	}

	if c.Checkout.BaseRemote == "" {
		c.Checkout.BaseRemote = DefaultBaseRemote
	}

	if c.DB.Path == "" {
		c.DB.Path = DefaultDBPath
	}

	if len(c.Queries) == 0 {
		c.Queries = []QueryConfig{{ID: "all"}}
	}
	for i := range c.Queries {
		if c.Queries[i].State == "" {
			c.Queries[i].State = DefaultQueryState
		}
	}
}
