// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"phi-scrub/internal/paths"
)

// Modes accepted in defaults.mode and profile modes.
var Modes = []string{"annotate", "structured", "deidentify"}

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format     string `yaml:"format"`
		Mode       string `yaml:"mode"`
		Categories string `yaml:"categories"`
		Verbose    bool   `yaml:"verbose"`
		Debug      bool   `yaml:"debug"`
		NoColor    bool   `yaml:"no_color"`
		ShowMatch  bool   `yaml:"show_match"`
		Workers    int    `yaml:"workers"`
	} `yaml:"defaults"`

	// Engine settings
	Engine struct {
		MaxContextIterations int `yaml:"max_context_iterations"`
	} `yaml:"engine"`

	// Lookup list location; empty uses the embedded lists
	Lookup struct {
		Dir string `yaml:"dir"`
	} `yaml:"lookup"`

	// Audit log written in deidentify mode
	Audit struct {
		IndexFile string `yaml:"index_file"`
	} `yaml:"audit"`

	// Profiles for different processing scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a processing profile. Zero values leave the defaults
// in place.
type Profile struct {
	Description string `yaml:"description"`
	Format      string `yaml:"format"`
	Mode        string `yaml:"mode"`
	Categories  string `yaml:"categories"`
	Verbose     bool   `yaml:"verbose"`
	Debug       bool   `yaml:"debug"`
	NoColor     bool   `yaml:"no_color"`
	ShowMatch   bool   `yaml:"show_match"`
	Workers     int    `yaml:"workers"`
	IndexFile   string `yaml:"index_file"`
}

// LoadConfig loads configuration from the specified file path. An empty
// path returns the defaults.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.Mode = "annotate"
	config.Defaults.Categories = "all"

	config.Profiles["research"] = Profile{
		Description: "De-identify documents for research export, with an audit log",
		Format:      "json",
		Mode:        "deidentify",
		Categories:  "all",
		NoColor:     true,
		IndexFile:   "phi-scrub-audit.json",
	}

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if config.Profiles == nil {
		config.Profiles = make(map[string]Profile)
	}

	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// FindConfigFile looks for a configuration file in the current directory,
// then in the user configuration directory. It returns "" when none exists.
func FindConfigFile() string {
	for _, name := range []string{"config.yaml", "phi-scrub.yaml", "phi-scrub.yml", ".phi-scrub.yaml", ".phi-scrub.yml"} {
		if fileExists(name) {
			return name
		}
	}

	if standardConfig := paths.GetConfigFile(); standardConfig != "" && fileExists(standardConfig) {
		return standardConfig
	}
	return ""
}

// fileExists checks if a file exists and is not a directory
func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ListProfiles returns the sorted profile names
func (c *Config) ListProfiles() []string {
	profiles := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		profiles = append(profiles, name)
	}
	sort.Strings(profiles)
	return profiles
}

// GetProfile returns a profile by name, or nil if not found
func (c *Config) GetProfile(name string) *Profile {
	if profile, exists := c.Profiles[name]; exists {
		return &profile
	}
	return nil
}

// ApplyProfile overlays the non-zero settings of the named profile on the
// defaults.
func (c *Config) ApplyProfile(name string) error {
	profile := c.GetProfile(name)
	if profile == nil {
		return fmt.Errorf("profile '%s' not found; available profiles: %v", name, c.ListProfiles())
	}

	if profile.Format != "" {
		c.Defaults.Format = profile.Format
	}
	if profile.Mode != "" {
		c.Defaults.Mode = profile.Mode
	}
	if profile.Categories != "" {
		c.Defaults.Categories = profile.Categories
	}
	if profile.Workers > 0 {
		c.Defaults.Workers = profile.Workers
	}
	if profile.IndexFile != "" {
		c.Audit.IndexFile = profile.IndexFile
	}
	c.Defaults.Verbose = c.Defaults.Verbose || profile.Verbose
	c.Defaults.Debug = c.Defaults.Debug || profile.Debug
	c.Defaults.NoColor = c.Defaults.NoColor || profile.NoColor
	c.Defaults.ShowMatch = c.Defaults.ShowMatch || profile.ShowMatch
	return nil
}

// ValidateConfig checks modes, counts and paths of the defaults and of
// every profile.
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("configuration cannot be nil")
	}

	if err := validateMode(config.Defaults.Mode); err != nil {
		return err
	}
	if config.Defaults.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", config.Defaults.Workers)
	}
	if config.Engine.MaxContextIterations < 0 {
		return fmt.Errorf("engine.max_context_iterations must not be negative, got %d", config.Engine.MaxContextIterations)
	}

	if err := paths.ValidatePath(config.Lookup.Dir); err != nil {
		return fmt.Errorf("invalid lookup directory: %w", err)
	}
	if err := paths.ValidatePath(config.Audit.IndexFile); err != nil {
		return fmt.Errorf("invalid audit index file path: %w", err)
	}

	for profileName, profile := range config.Profiles {
		if err := validateMode(profile.Mode); err != nil {
			return fmt.Errorf("profile '%s': %w", profileName, err)
		}
		if profile.Workers < 0 {
			return fmt.Errorf("profile '%s': workers must not be negative", profileName)
		}
		if err := paths.ValidatePath(profile.IndexFile); err != nil {
			return fmt.Errorf("invalid audit index file path in profile '%s': %w", profileName, err)
		}
	}

	return nil
}

func validateMode(mode string) error {
	if mode == "" {
		return nil
	}
	for _, m := range Modes {
		if mode == m {
			return nil
		}
	}
	return fmt.Errorf("unknown mode '%s', expected one of %v", mode, Modes)
}

// LoadConfigOrDefault loads configuration from configFile (or searches standard locations
// when configFile is empty). If loading fails, it returns the default
// configuration together with the error so the caller can warn about it.
func LoadConfigOrDefault(configFile string) (*Config, error) {
	configPath := configFile
	if configPath == "" {
		configPath = FindConfigFile()
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		// Fall back to defaults; the caller decides whether the error is fatal
		cfg, _ = LoadConfig("")
		return cfg, err
	}
	return cfg, nil
}
