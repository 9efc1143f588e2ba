package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port int
	Host string
	Env  string // "development" or "production"

	// Image directory served and watched
	ImagesDir string

	// Listing defaults
	PageSize int

	// Client settings (served to the browser via /api/config)
	DisplayLimit   int
	ReconnectDelay time.Duration

	// Watcher settings
	WatchRecursive bool
	IgnoreGlobs    []string

	// Debug settings
	LogLevel string
}

const (
	DefaultPort           = 8002
	DefaultPageSize       = 50
	DefaultDisplayLimit   = 200
	DefaultReconnectDelay = 5 * time.Second

	// Folder under the user's home directory that producers write into
	defaultImagesFolder = "debug_images"
)

var (
	cfg  *Config
	once sync.Once
)

// Get returns the global configuration (singleton)
func Get() *Config {
	once.Do(func() {
		// .env is optional; real environment variables win
		_ = godotenv.Load()
		cfg = load()
	})
	return cfg
}

// load reads configuration from environment variables
func load() *Config {
	return &Config{
		// Server
		Port: getEnvInt("PORT", DefaultPort),
		Host: getEnv("HOST", "0.0.0.0"),
		Env:  getEnv("ENV", "development"),

		// Images
		ImagesDir: getEnv("IMAGES_DIR", defaultImagesDir()),

		// Listing
		PageSize: getEnvInt("PAGE_SIZE", DefaultPageSize),

		// Client
		DisplayLimit:   getEnvInt("DISPLAY_LIMIT", DefaultDisplayLimit),
		ReconnectDelay: getEnvDuration("RECONNECT_DELAY", DefaultReconnectDelay),

		// Watcher
		WatchRecursive: getEnvBool("WATCH_RECURSIVE", false),
		IgnoreGlobs:    getEnvList("IGNORE_GLOBS"),

		// Debug
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

// defaultImagesDir returns ~/debug_images, falling back to a relative
// directory when the home directory cannot be resolved.
func defaultImagesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultImagesFolder
	}
	return filepath.Join(home, defaultImagesFolder)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil && i > 0 {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
