package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all routes: the JSON API, image bytes, the push
// channel and the embedded browser client as fallback
func SetupRoutes(r *gin.Engine, h *Handlers) {
	// API group
	api := r.Group("/api")

	// Client settings
	api.GET("/config", h.GetClientConfig)

	// Image listing - static routes first
	api.GET("/images", h.ListImages)
	api.GET("/images/archive", h.DownloadPageArchive)
	api.GET("/images/:name/info", h.GetImageInfo)

	// Raw image bytes
	r.GET("/images/*filepath", h.ServeImage)
	r.HEAD("/images/*filepath", h.ServeImage)

	// Push channel (WebSocket)
	r.GET("/ws", h.PushChannel)

	// Browser client
	r.NoRoute(h.ServeClient)
}
