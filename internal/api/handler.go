// Package api exposes the plate search over HTTP.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/search"
)

// StatusInfo static facts reported by GET /status
type StatusInfo struct {
	Version         string `json:"version"`
	SourceKind      string `json:"sourceKind"`
	Marker          string `json:"marker"`
	RegistryEnabled bool   `json:"registryEnabled"`
}

// Handler API handler
type Handler struct {
	service   *search.Service
	info      StatusInfo
	downloads *downloadStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewHandler creates the API handler. downloadTTL bounds how long an export can be fetched.
func NewHandler(service *search.Service, info StatusInfo, downloadTTL time.Duration, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		service:   service,
		info:      info,
		downloads: newDownloadStore(downloadTTL),
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterRoutes registers the API routes on router.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)

	// búsqueda
	router.GET("/search", h.Search)
	router.GET("/search/stream", h.SearchStream)

	// exportación
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.DownloadExport)
}
