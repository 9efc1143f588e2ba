package api

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/debug-viewer/fs"
	"github.com/xiaoyuanzhu-com/debug-viewer/log"
	"github.com/xiaoyuanzhu-com/debug-viewer/utils"
)

// queryInt parses a positive integer query parameter. Missing, malformed and
// non-positive values all return 0, which the listing treats as "use default".
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// ListImages handles GET /api/images?page=&pageSize=
func (h *Handlers) ListImages(c *gin.Context) {
	page := queryInt(c, "page")
	pageSize := queryInt(c, "pageSize")

	result, err := h.server.FS().ListPage(c.Request.Context(), page, pageSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to list images")
		respondFSError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ServeImage handles GET /images/*filepath
func (h *Handlers) ServeImage(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("filepath"), "/")
	if name == "" {
		RespondNotFound(c, "Image not found")
		return
	}

	fullPath, err := h.server.FS().ResolvePath(name)
	if err != nil {
		respondFSError(c, err)
		return
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("name", name).Msg("failed to stat image")
		}
		RespondNotFound(c, "Image not found")
		return
	}
	if info.IsDir() {
		RespondNotFound(c, "Image not found")
		return
	}

	c.Header("Content-Type", utils.DetectMimeType(name))
	c.File(fullPath)
}

// GetImageInfo handles GET /api/images/:name/info
func (h *Handlers) GetImageInfo(c *gin.Context) {
	name := c.Param("name")

	info, err := h.server.FS().ImageInfo(c.Request.Context(), name)
	if err != nil {
		if !errors.Is(err, fs.ErrFileNotFound) && !errors.Is(err, fs.ErrInvalidPath) {
			log.Error().Err(err).Str("name", name).Msg("failed to read image info")
		}
		respondFSError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// DownloadPageArchive handles GET /api/images/archive?page=&pageSize=
func (h *Handlers) DownloadPageArchive(c *gin.Context) {
	page := queryInt(c, "page")
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(c, "pageSize")

	// Headers must go out before the zip body; they are dropped again if
	// listing fails before anything was written
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename="`+fs.ArchiveName(page)+`"`)

	result, err := h.server.FS().WritePageArchive(c.Request.Context(), c.Writer, page, pageSize)
	if err != nil {
		if c.Writer.Written() {
			log.Error().Err(err).Int("page", page).Msg("page archive aborted mid-stream")
			c.Abort()
			return
		}
		c.Writer.Header().Del("Content-Type")
		c.Writer.Header().Del("Content-Disposition")
		log.Error().Err(err).Int("page", page).Msg("failed to build page archive")
		respondFSError(c, err)
		return
	}

	log.Debug().
		Int("page", result.CurrentPage).
		Int("files", len(result.Images)).
		Msg("page archive sent")
}
