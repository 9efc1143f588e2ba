package fs

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/gen2brain/heic"
	"github.com/xiaoyuanzhu-com/debug-viewer/log"
	"github.com/xiaoyuanzhu-com/debug-viewer/utils"

	// Register BMP, TIFF and WebP so image.DecodeConfig can read their headers
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ImageInfo returns metadata for one file. Dimensions come from the header
// only; files that are not decodable images still get name, size and MIME type.
func (s *Service) ImageInfo(ctx context.Context, name string) (*ImageInfo, error) {
	fullPath, err := s.ResolvePath(name)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	if stat.IsDir() {
		return nil, ErrIsDirectory
	}

	info := &ImageInfo{
		Name:       name,
		Size:       stat.Size(),
		ModifiedAt: stat.ModTime().UTC(),
		MimeType:   utils.DetectMimeType(name),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !utils.IsImage(name) {
		return info, nil
	}

	cfg, format, err := decodeConfig(fullPath, info.MimeType)
	if err != nil {
		log.Debug().Err(err).Str("name", name).Msg("no image header, returning file info only")
		return info, nil
	}
	info.Width = cfg.Width
	info.Height = cfg.Height
	info.Format = format

	return info, nil
}

// decodeConfig reads only as much of the file as the decoder needs for its size
func decodeConfig(fullPath, mimeType string) (image.Config, string, error) {
	f, err := os.Open(fullPath)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	// HEIC/HEIF has a dedicated decoder
	if mimeType == "image/heic" || mimeType == "image/heif" {
		cfg, err := heic.DecodeConfig(f)
		if err != nil {
			return image.Config{}, "", fmt.Errorf("decode heic header: %w", err)
		}
		return cfg, "heic", nil
	}

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("decode image header (%s): %w", mimeType, err)
	}
	return cfg, format, nil
}
