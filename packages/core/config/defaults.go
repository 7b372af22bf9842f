package config

import (
	"os"
	"path/filepath"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		DataDir:      DefaultDataDir(),
		ArchivePath:  "",
		Timeout:      30000, // 30 seconds
		MaxRedirects: 10,
		HistoryLimit: 20,
	}
}

// DefaultDataDir is where collections live when no dataDir is configured.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quiver"
	}
	return filepath.Join(home, ".quiver", "collections")
}
