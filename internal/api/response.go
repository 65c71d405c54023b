package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SoyJotaGS/buscador-rrv-web/internal/search"
	"github.com/SoyJotaGS/buscador-rrv-web/internal/source"
)

// Error codes carried in Response.Code
const (
	CodeOK                = 0
	CodeBadRequest        = 1001
	CodeNotFound          = 4040
	CodeInternal          = 5000
	CodeSourceUnavailable = 5030
)

// Response common envelope
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, status, code int, message string) {
	c.JSON(status, Response{
		Code:    code,
		Message: message,
	})
}

// searchError maps a search failure to a response. A failed source is distinct
// from an empty result, which is not an error at all.
func searchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, search.ErrEmptyQuery):
		errorResponse(c, http.StatusBadRequest, CodeBadRequest, "ingrese una placa")
	case errors.Is(err, source.ErrSourceUnavailable):
		errorResponse(c, http.StatusServiceUnavailable, CodeSourceUnavailable, "no se pudo acceder a las hojas de cálculo: "+err.Error())
	default:
		errorResponse(c, http.StatusInternalServerError, CodeInternal, err.Error())
	}
}
