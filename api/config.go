package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetClientConfig handles GET /api/config
func (h *Handlers) GetClientConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.server.Config().ToClientConfig())
}
