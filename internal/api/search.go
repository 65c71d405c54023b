package api

import (
	"github.com/gin-gonic/gin"
)

// Search runs a plate search and returns the whole response.
// GET /api/search?plate=ABC
func (h *Handler) Search(c *gin.Context) {
	resp, err := h.service.Search(c.Request.Context(), c.Query("plate"), nil)
	if err != nil {
		searchError(c, err)
		return
	}
	success(c, resp)
}
