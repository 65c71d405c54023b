package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/exporter"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/model"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportRequest struct {
	Record *model.MatchRecord `json:"record"`
	Query  string             `json:"query"`
}

type exportResponse struct {
	Token       string `json:"token"`
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
}

// Export renders a workbook and returns a one-shot download link.
// A record renders its own sheet; a query runs the search and lists every match.
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, CodeBadRequest, "parámetros inválidos")
		return
	}

	now := h.now()
	var (
		wb    *excelize.File
		plate string
		err   error
	)
	switch {
	case req.Record != nil:
		plate = req.Record.Plate
		wb, err = exporter.RecordWorkbook(*req.Record, now)
	case strings.TrimSpace(req.Query) != "":
		resp, serr := h.service.Search(c.Request.Context(), req.Query, nil)
		if serr != nil {
			searchError(c, serr)
			return
		}
		plate = resp.Query
		wb, err = exporter.ResultsWorkbook(resp)
	default:
		errorResponse(c, http.StatusBadRequest, CodeBadRequest, "se requiere record o query")
		return
	}
	if err != nil {
		h.logger.Error("render workbook", zap.String("plate", plate), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, CodeInternal, "no se pudo generar el archivo")
		return
	}

	data, err := exporter.Bytes(wb)
	if err != nil {
		h.logger.Error("write workbook", zap.String("plate", plate), zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, CodeInternal, "no se pudo generar el archivo")
		return
	}

	fileName := exporter.FileName(plate, now)
	token := h.downloads.put(fileName, data)
	success(c, exportResponse{
		Token:       token,
		FileName:    fileName,
		DownloadURL: fmt.Sprintf("/api/export/download/%s", token),
	})
}

// DownloadExport serves an exported workbook once.
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	item, ok := h.downloads.take(token)
	if !ok {
		errorResponse(c, http.StatusNotFound, CodeNotFound, "el enlace de descarga expiró")
		return
	}

	c.Header("Content-Disposition", contentDisposition(item.fileName))
	c.Data(http.StatusOK, xlsxContentType, item.data)
}

func contentDisposition(fileName string) string {
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", fileName, url.PathEscape(fileName))
}
