package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/xiaoyuanzhu-com/debug-viewer/log"
)

// listedFile is one directory entry with the mtime used for ordering
type listedFile struct {
	name    string
	modTime time.Time
}

// ListPage returns one page of the image directory, newest first.
// page is 1-based; non-positive page or pageSize fall back to 1 and the
// configured page size. Pages past the end are empty, not an error.
func (s *Service) ListPage(ctx context.Context, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.pageSize()
	}

	files, err := s.listSorted(ctx)
	if err != nil {
		return nil, err
	}

	return paginate(files, page, pageSize), nil
}

// listSorted reads the whole directory and sorts it by mtime descending.
// os.ReadDir returns entries sorted by name, so ties keep name order.
func (s *Service) listSorted(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryUnreadable, err)
	}

	files := make([]listedFile, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		// Stat follows symlinks so linked images sort by their target's mtime
		info, err := os.Stat(filepath.Join(s.cfg.Root, entry.Name()))
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				log.Warn().Err(err).Str("name", entry.Name()).Msg("failed to stat directory entry, skipping")
			}
			continue
		}
		if info.IsDir() {
			continue
		}

		files = append(files, listedFile{name: entry.Name(), modTime: info.ModTime()})
	}

	slices.SortStableFunc(files, func(a, b listedFile) int {
		return b.modTime.Compare(a.modTime)
	})

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.name
	}
	return names, nil
}

// paginate slices [(page-1)*pageSize, page*pageSize) out of names.
// Callers guarantee page >= 1 and pageSize >= 1.
func paginate(names []string, page, pageSize int) *Page {
	count := len(names)
	totalPages := count / pageSize
	if count%pageSize != 0 {
		totalPages++
	}

	result := &Page{
		Images:      []string{},
		TotalPages:  totalPages,
		CurrentPage: page,
	}
	if page > totalPages {
		return result
	}

	start := (page - 1) * pageSize
	end := count
	if count-start > pageSize {
		end = start + pageSize
	}
	result.Images = append(result.Images, names[start:end]...)
	return result
}

func (s *Service) pageSize() int {
	if s.cfg.PageSize > 0 {
		return s.cfg.PageSize
	}
	return DefaultPageSize
}
