package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mgit/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "mgit" // application name used for config directory

// DefaultMaxRecent caps the recent repository list when the config does not
// specify its own limit.
const DefaultMaxRecent = 10

// Config holds user configuration for mgit.
//
// The core packages only ever read LastRepository; everything else is owned
// by the outer application layer (recent list for the open dialog, theme for
// the window chrome).
type Config struct {
	// RecentRepositories is the list of recently opened repository paths,
	// most recent first.
	RecentRepositories []string `yaml:"recent_repositories"`
	// LastRepository is the repository that was open when the application
	// last exited.
	LastRepository string `yaml:"last_repository"`
	Theme          string `yaml:"theme"`            // UI theme name ("auto", "light", "dark")
	MaxRecentCount int    `yaml:"max_recent_count"` // Cap for RecentRepositories
	Version        string `yaml:"version"`          // Track config version
	InitTime       int64  `yaml:"init_time"`        // Unix timestamp of first setup
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// Load loads the config from the standard location.
// If no config exists, defaults are returned so a fresh install works
// without a setup step.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		cfg := DefaultConfig()
		return &cfg, nil
	}

	return LoadFrom(configPath)
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.MaxRecentCount <= 0 {
		cfg.MaxRecentCount = DefaultMaxRecent
	}
	if cfg.Theme == "" {
		cfg.Theme = "auto"
	}

	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// IsFirstRun checks if this is the first time the application is run
func IsFirstRun() bool {
	_, exists := FindConfigFile()
	return !exists
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		RecentRepositories: []string{},
		Theme:              "auto",
		MaxRecentCount:     DefaultMaxRecent,
		Version:            "1.0",
		InitTime:           0, // Will be set during first save
	}
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600) for security
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// AddRecentRepository records a repository path at the front of the recent
// list, deduplicating any earlier entry and trimming to MaxRecentCount.
// It also updates LastRepository.
func (c *Config) AddRecentRepository(path string) {
	max := c.MaxRecentCount
	if max <= 0 {
		max = DefaultMaxRecent
	}

	updated := []string{path}
	for _, p := range c.RecentRepositories {
		if p == path {
			continue
		}
		updated = append(updated, p)
		if len(updated) == max {
			break
		}
	}

	c.RecentRepositories = updated
	c.LastRepository = path
}

// RemoveRecentRepository drops a path from the recent list, typically after
// the directory was deleted or is no longer a repository.
func (c *Config) RemoveRecentRepository(path string) {
	updated := c.RecentRepositories[:0]
	for _, p := range c.RecentRepositories {
		if p != path {
			updated = append(updated, p)
		}
	}
	c.RecentRepositories = updated
	if c.LastRepository == path {
		c.LastRepository = ""
	}
}
