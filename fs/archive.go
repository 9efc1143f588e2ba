package fs

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/mholt/archives"
)

// WritePageArchive lists one page like ListPage and streams its files as a zip.
// Files that vanish after listing fail the archive; callers should treat
// a partial write as an aborted download.
func (s *Service) WritePageArchive(ctx context.Context, w io.Writer, page, pageSize int) (*Page, error) {
	result, err := s.ListPage(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	filenames := make(map[string]string, len(result.Images))
	for _, name := range result.Images {
		filenames[filepath.Join(s.cfg.Root, name)] = name
	}

	files, err := archives.FilesFromDisk(ctx, nil, filenames)
	if err != nil {
		return nil, fmt.Errorf("collect page files: %w", err)
	}

	if err := (archives.Zip{}).Archive(ctx, w, files); err != nil {
		return nil, fmt.Errorf("write zip: %w", err)
	}
	return result, nil
}

// ArchiveName is the download filename for a page archive
func ArchiveName(page int) string {
	return fmt.Sprintf("images-page-%d.zip", page)
}
