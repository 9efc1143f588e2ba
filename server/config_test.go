package server

import (
	"slices"
	"testing"
	"time"

	"github.com/xiaoyuanzhu-com/debug-viewer/fs"
)

func TestConfig_ToFSConfig(t *testing.T) {
	cfg := &Config{
		ImagesDir:      "/tmp/images",
		PageSize:       25,
		WatchEnabled:   true,
		WatchRecursive: true,
		IgnoreGlobs:    []string{"*.json"},
		DebounceDelay:  time.Second,
	}

	got := cfg.ToFSConfig()
	if got.Root != "/tmp/images" || got.PageSize != 25 || !got.WatchEnabled || !got.Recursive {
		t.Errorf("unexpected fs config %+v", got)
	}
	if got.Exclusions != fs.ExcludeDefault {
		t.Errorf("expected default exclusions, got %v", got.Exclusions)
	}
	if !slices.Equal(got.IgnoreGlobs, []string{"*.json"}) || got.DebounceDelay != time.Second {
		t.Errorf("unexpected globs/delay %+v", got)
	}
}

func TestConfig_ToClientConfig(t *testing.T) {
	cfg := &Config{PageSize: 50, DisplayLimit: 200, ReconnectDelay: 5 * time.Second}

	got := cfg.ToClientConfig()
	want := ClientConfig{PageSize: 50, DisplayLimit: 200, ReconnectDelayMs: 5000}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	if !(&Config{Env: "development"}).IsDevelopment() {
		t.Error("expected development")
	}
	if (&Config{Env: "production"}).IsDevelopment() {
		t.Error("expected production")
	}
}
