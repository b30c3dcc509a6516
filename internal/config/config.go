package config

import (
	"os"
	"path/filepath"
)

// Config holds application configuration
type Config struct {
	// Server settings
	Host string
	Port string

	// Database settings
	DBPath string

	// Archive folder settings
	ArchivesPath string

	// Conversion defaults
	ConvertIframes bool
	Charset        string
}

// Default returns default configuration
func Default() *Config {
	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	// Use ~/.mht-viewer for data directory
	dataDir := filepath.Join(homeDir, ".mht-viewer")

	return &Config{
		Host:         "localhost",
		Port:         "8080",
		DBPath:       filepath.Join(dataDir, "archives.db"),
		ArchivesPath: "./archives", // Default to ./archives directory
		Charset:      "utf-8",
	}
}

// Address returns the full server address
func (c *Config) Address() string {
	return c.Host + ":" + c.Port
}

// URL returns the full server URL
func (c *Config) URL() string {
	return "http://" + c.Address()
}
