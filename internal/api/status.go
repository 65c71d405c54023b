package api

import (
	"github.com/gin-gonic/gin"
)

// GetStatus service status
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	success(c, h.info)
}
