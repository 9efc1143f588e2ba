package api

import (
	iofs "io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xiaoyuanzhu-com/debug-viewer/log"
	"github.com/xiaoyuanzhu-com/debug-viewer/web"
)

// ServeClient serves the embedded browser client for every unmatched route
func (h *Handlers) ServeClient(c *gin.Context) {
	path := c.Request.URL.Path

	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		RespondNotFound(c, "Not found")
		return
	}
	if strings.HasPrefix(path, "/api/") {
		RespondNotFound(c, "API endpoint not found")
		return
	}

	// HTML should not be cached so a rebuilt binary is picked up on reload
	if path == "/" || path == "/index.html" {
		data, err := web.Index()
		if err != nil {
			log.Error().Err(err).Msg("embedded index.html missing")
			RespondInternalError(c, "Client unavailable")
			return
		}
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
		return
	}

	name := strings.TrimPrefix(path, "/")
	info, err := iofs.Stat(web.Static, name)
	if err != nil || info.IsDir() {
		RespondNotFound(c, "Not found")
		return
	}

	c.Header("Cache-Control", "public, max-age=300")
	c.FileFromFS(path, http.FS(web.Static))
}
