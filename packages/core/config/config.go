package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Config represents the quiver configuration
type Config struct {
	DataDir        string `json:"dataDir,omitempty"`        // Collection store directory
	ArchivePath    string `json:"archivePath,omitempty"`    // Execution archive database; empty disables archiving
	Timeout        int    `json:"timeout,omitempty"`        // milliseconds
	FollowRedirect *bool  `json:"followRedirects,omitempty"`
	MaxRedirects   int    `json:"maxRedirects,omitempty"`
	ValidateSSL    *bool  `json:"validateSSL,omitempty"`
	Proxy          string `json:"proxy,omitempty"`
	HistoryLimit   int    `json:"historyLimit,omitempty"` // Per-request bounded history size
	NoColor        *bool  `json:"noColor,omitempty"`
}

// BoolPtr returns a pointer to a bool value
func BoolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirect, true)
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".quiver.config.json",
	"quiver.config.json",
	".quiverrc",
	".quiverrc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// Save writes the configuration to the given path
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}
