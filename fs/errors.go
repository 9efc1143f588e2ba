package fs

import "errors"

var (
	// ErrInvalidPath is returned when a name is empty, absolute, or escapes the image directory
	ErrInvalidPath = errors.New("invalid file path")

	// ErrFileNotFound is returned when a file doesn't exist
	ErrFileNotFound = errors.New("file not found")

	// ErrIsDirectory is returned when operation requires a file
	ErrIsDirectory = errors.New("is a directory")

	// ErrDirectoryUnreadable is returned when the image directory cannot be listed
	ErrDirectoryUnreadable = errors.New("could not read images directory")

	// ErrInvalidPattern is returned when an ignore glob does not parse
	ErrInvalidPattern = errors.New("invalid ignore pattern")
)
