package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/search"
)

// SearchStream runs a plate search, streaming progress as server-sent events and
// finishing with a result or error event.
// GET /api/search/stream?plate=ABC
func (h *Handler) SearchStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		errorResponse(c, http.StatusInternalServerError, CodeInternal, "streaming not supported")
		return
	}

	send := func(event search.StreamEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			h.logger.Warn("marshal stream event")
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	for event := range h.service.Stream(c.Request.Context(), c.Query("plate")) {
		send(event)
	}
}
