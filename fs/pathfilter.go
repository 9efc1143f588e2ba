package fs

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Category represents a category of files to ignore
type Category int

const (
	// CategoryInitialMarker - names containing "initial." (producer bootstrap frames)
	CategoryInitialMarker Category = 1 << iota

	// CategoryTemp - in-progress writes (*.tmp)
	CategoryTemp

	// CategoryHidden - dotfiles and dotdirs
	CategoryHidden

	// CategoryBackup - editor backups and swap files (~file, *.bak, *.swp)
	CategoryBackup

	// CategoryOS - OS-generated files (.DS_Store, Thumbs.db, ._*)
	CategoryOS
)

// Common presets
const (
	// ExcludeNone - no exclusions
	ExcludeNone Category = 0

	// ExcludeDefault - what the watcher ignores unless configured otherwise
	ExcludeDefault = CategoryInitialMarker | CategoryTemp

	// ExcludeAll - all categories
	ExcludeAll = CategoryInitialMarker | CategoryTemp | CategoryHidden | CategoryBackup | CategoryOS
)

var (
	backupSuffixes = []string{".bak", ".swp", ".swo", ".orig"}

	osNames = map[string]bool{
		".ds_store":   true,
		"thumbs.db":   true,
		"desktop.ini": true,
	}
)

// PathFilter decides which paths the watcher ignores
type PathFilter struct {
	exclusions Category
	globs      []string
}

// NewPathFilter creates a PathFilter with the given categories and extra
// doublestar globs. Globs match the slash-separated relative path or the base name.
func NewPathFilter(exclusions Category, globs ...string) (*PathFilter, error) {
	for _, g := range globs {
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, g)
		}
	}
	return &PathFilter{exclusions: exclusions, globs: globs}, nil
}

// DefaultPathFilter returns a PathFilter with default exclusions
func DefaultPathFilter() *PathFilter {
	return &PathFilter{exclusions: ExcludeDefault}
}

// IsExcluded checks a path relative to the image directory. Any excluded
// component excludes the whole path.
func (f *PathFilter) IsExcluded(path string) bool {
	slashPath := filepath.ToSlash(path)
	for _, part := range strings.Split(slashPath, "/") {
		if part == "" || part == "." {
			continue
		}
		if f.isExcludedName(part) {
			return true
		}
	}

	if len(f.globs) > 0 {
		base := filepath.Base(path)
		for _, g := range f.globs {
			if doublestar.MatchUnvalidated(g, slashPath) || doublestar.MatchUnvalidated(g, base) {
				return true
			}
		}
	}
	return false
}

// isExcludedName checks a single name against the enabled categories
func (f *PathFilter) isExcludedName(name string) bool {
	lower := strings.ToLower(name)

	if f.exclusions&CategoryInitialMarker != 0 {
		if strings.Contains(name, "initial.") {
			return true
		}
	}

	if f.exclusions&CategoryTemp != 0 {
		if strings.HasSuffix(name, ".tmp") {
			return true
		}
	}

	if f.exclusions&CategoryHidden != 0 {
		if strings.HasPrefix(name, ".") && name != "." && name != ".." {
			return true
		}
	}

	if f.exclusions&CategoryBackup != 0 {
		if strings.HasPrefix(name, "~") || strings.HasSuffix(name, "~") {
			return true
		}
		for _, suffix := range backupSuffixes {
			if strings.HasSuffix(lower, suffix) {
				return true
			}
		}
	}

	if f.exclusions&CategoryOS != 0 {
		if osNames[lower] || strings.HasPrefix(name, "._") {
			return true
		}
	}

	return false
}
