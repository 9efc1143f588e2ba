package server

import (
	"time"

	"github.com/xiaoyuanzhu-com/debug-viewer/fs"
)

// Config holds server configuration
type Config struct {
	// Server infrastructure
	Port int
	Host string
	Env  string // "development" or "production"

	// Image directory (created on start if missing)
	ImagesDir string

	// Listing
	PageSize int

	// Browser client
	DisplayLimit   int
	ReconnectDelay time.Duration

	// Watcher
	WatchEnabled   bool
	WatchRecursive bool
	IgnoreGlobs    []string
	DebounceDelay  time.Duration
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// ToFSConfig converts server config to filesystem service config
func (c *Config) ToFSConfig() fs.Config {
	return fs.Config{
		Root:          c.ImagesDir,
		PageSize:      c.PageSize,
		WatchEnabled:  c.WatchEnabled,
		Recursive:     c.WatchRecursive,
		Exclusions:    fs.ExcludeDefault,
		IgnoreGlobs:   c.IgnoreGlobs,
		DebounceDelay: c.DebounceDelay,
	}
}

// ClientConfig is what the browser client needs to know about the server
type ClientConfig struct {
	PageSize         int   `json:"pageSize"`
	DisplayLimit     int   `json:"displayLimit"`
	ReconnectDelayMs int64 `json:"reconnectDelayMs"`
}

// ToClientConfig converts server config to the browser client's settings
func (c *Config) ToClientConfig() ClientConfig {
	return ClientConfig{
		PageSize:         c.PageSize,
		DisplayLimit:     c.DisplayLimit,
		ReconnectDelayMs: c.ReconnectDelay.Milliseconds(),
	}
}
