package fs

import (
	"path/filepath"
	"strings"
)

// validator handles path validation for names taken from URLs
type validator struct{}

func newValidator() *validator {
	return &validator{}
}

// ValidateName checks that name is a relative path that stays inside the image
// directory. Any such name is servable; there is no further access control.
func (v *validator) ValidateName(name string) error {
	if name == "" || name == "." {
		return ErrInvalidPath
	}

	// No absolute paths
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return ErrInvalidPath
	}

	// No NUL bytes
	if strings.ContainsRune(name, 0) {
		return ErrInvalidPath
	}

	// No .. components (directory traversal attack prevention)
	for _, part := range strings.Split(filepath.ToSlash(name), "/") {
		if part == ".." {
			return ErrInvalidPath
		}
	}

	return nil
}
