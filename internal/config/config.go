// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Portal
	PortalURL string `json:"portal_url,omitempty"` // Base URL of the placement portal API

	// Paths
	StateDir       string `json:"state_dir,omitempty"`       // Directory for session and throttle state
	CatalogPath    string `json:"catalog_path,omitempty"`    // Path to the static opportunity catalog JSON
	ApplicationsDB string `json:"applications_db,omitempty"` // Path to the application ledger database

	// Discovery
	CrawlSources []string `json:"crawl_sources,omitempty"` // Listing source URLs for live discovery
	UseBrowser   bool     `json:"use_browser,omitempty"`   // Use headless browser for SPA sources
	CrawlTimeout int      `json:"crawl_timeout,omitempty"` // Per-source fetch timeout in seconds

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.CrawlTimeout < 0 {
		return fmt.Errorf("config error: 'crawl_timeout' must be non-negative")
	}

	// Validate file paths exist (if specified)
	if c.CatalogPath != "" {
		if _, err := os.Stat(c.CatalogPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: catalog file not found: %s", c.CatalogPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.PortalURL == "" {
		result.PortalURL = defaults.PortalURL
	}
	if result.StateDir == "" {
		result.StateDir = defaults.StateDir
	}
	if result.CatalogPath == "" {
		result.CatalogPath = defaults.CatalogPath
	}
	if result.ApplicationsDB == "" {
		result.ApplicationsDB = defaults.ApplicationsDB
	}

	// Slice fields: use default if empty
	if len(result.CrawlSources) == 0 {
		result.CrawlSources = defaults.CrawlSources
	}

	// Int fields: use default if zero
	if result.CrawlTimeout == 0 {
		result.CrawlTimeout = defaults.CrawlTimeout
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
