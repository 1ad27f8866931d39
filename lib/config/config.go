// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds gemato's ambient defaults (§9: OpenPGP environment
// setup, default profile, worker concurrency).
type Config struct {
	// DefaultProfile names the lib/profile policy used when a command
	// is given no -p/--profile flag.
	DefaultProfile string `yaml:"default_profile"`

	// Workers bounds the scan and hashing concurrency of verify,
	// create and update. 0 means GOMAXPROCS.
	Workers int `yaml:"workers"`

	// OpenPGPProxy is the http_proxy value passed to gpg for keyserver
	// and WKD lookups.
	OpenPGPProxy string `yaml:"openpgp_proxy"`

	// WKDTimeout is a duration string for Web Key Directory lookups,
	// parsed by WKDTimeoutDuration and checked by Validate. No other
	// gemato package reads it.
	WKDTimeout string `yaml:"wkd_timeout"`

	// TrustedKeysDir, if set, names a directory of OpenPGP public keys
	// imported and trusted into every Isolated environment this
	// process creates, so a verify run does not need a --openpgp-key
	// flag for every invocation.
	TrustedKeysDir string `yaml:"trusted_keys_dir"`
}

// Default returns gemato's built-in defaults, used as-is when no
// config file is configured and as the base a config file's fields
// are merged over when one is.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DefaultProfile: "default",
		Workers:        0,
		WKDTimeout:     "10s",
		TrustedKeysDir: filepath.Join(home, ".config", "gemato", "keys"),
	}
}

// Load reads GEMATO_CONFIG, if set, and merges it over Default();
// with the variable unset, it returns Default() unchanged.
func Load() (*Config, error) {
	path := os.Getenv("GEMATO_CONFIG")
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads and validates a config file at path, merging its
// fields over Default().
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in
// path-shaped fields.
func (c *Config) expandVariables() {
	vars := map[string]string{"HOME": os.Getenv("HOME")}
	c.TrustedKeysDir = expandVars(c.TrustedKeysDir, vars)
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

// WKDTimeoutDuration parses WKDTimeout, defaulting to 10s if it is
// empty or malformed.
func (c *Config) WKDTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.WKDTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// Validate checks the configuration for internally inconsistent
// values a YAML file could set.
func (c *Config) Validate() error {
	if c.DefaultProfile == "" {
		return fmt.Errorf("default_profile must not be empty")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.WKDTimeout != "" {
		if _, err := time.ParseDuration(c.WKDTimeout); err != nil {
			return fmt.Errorf("wkd_timeout: %w", err)
		}
	}
	return nil
}
