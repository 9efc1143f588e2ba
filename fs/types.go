package fs

import "time"

// DefaultPageSize is used when a caller passes a non-positive page size
const DefaultPageSize = 50

// Page is one slice of the directory listing, newest modification first.
// It is computed on every request and never cached.
type Page struct {
	Images      []string `json:"images"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPage"`
}

// FileAddedEvent notifies about a file that appeared in the image directory
type FileAddedEvent struct {
	Name    string // Path relative to the image directory
	Size    int64
	ModTime time.Time
}

// FileAddedHandler is called once per detected file (used by the broadcaster)
type FileAddedHandler func(event FileAddedEvent)

// ImageInfo describes one file in the image directory
type ImageInfo struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
	MimeType   string    `json:"mimeType"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	Format     string    `json:"format,omitempty"`
}

// Config contains configuration for the FS service
type Config struct {
	Root          string        // Image directory
	PageSize      int           // Default page size
	WatchEnabled  bool          // Enable filesystem watching
	Recursive     bool          // Watch subdirectories too
	Exclusions    Category      // Built-in ignore categories
	IgnoreGlobs   []string      // Extra doublestar patterns, matched against the relative path
	DebounceDelay time.Duration // Quiet period before a created file is reported
}
