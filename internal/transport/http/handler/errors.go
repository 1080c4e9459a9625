package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"netauto/internal/app"
	"netauto/internal/scraper"
	"netauto/internal/transport/http/response"
)

// writeServiceError maps service sentinels to status and code. Unknown errors
// become a 500 carrying fallback instead of the raw error.
func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput),
		errors.Is(err, app.ErrMessageEmpty),
		errors.Is(err, app.ErrUnknownAuditType),
		errors.Is(err, scraper.ErrInvalidURL),
		errors.Is(err, scraper.ErrInsufficientText):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrFileTypeNotAllowed):
		response.Error(c, http.StatusBadRequest, response.CodeFileTypeNotAllowed, err.Error())
	case errors.Is(err, app.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, response.CodeFileTooLarge, err.Error())
	case errors.Is(err, app.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
	case errors.Is(err, app.ErrDocumentNotFound):
		response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
	case errors.Is(err, app.ErrDeviceNotFound):
		response.Error(c, http.StatusNotFound, response.CodeDeviceNotFound, err.Error())
	case errors.Is(err, app.ErrDeviceExists):
		response.Error(c, http.StatusConflict, response.CodeDeviceExists, err.Error())
	case errors.Is(err, app.ErrVectorStore):
		response.Error(c, http.StatusInternalServerError, response.CodeVectorStore, err.Error())
	case errors.Is(err, app.ErrMessageEnqueue):
		response.Error(c, http.StatusServiceUnavailable, response.CodeUnavailable, err.Error())
	case errors.Is(err, app.ErrScraperDisabled):
		response.Error(c, http.StatusServiceUnavailable, response.CodeUnavailable, err.Error())
	case errors.Is(err, scraper.ErrFetch):
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailed, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(v), true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if raw := c.Query(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
