package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netauto/internal/app"
	"netauto/internal/transport/http/response"
)

type NetworkHandler struct {
	networkService *app.NetworkService
}

type AuditRequest struct {
	DeviceNames []string `json:"device_names" binding:"required,min=1"`
	AuditTypes  []string `json:"audit_types"`
}

type ValidateRequest struct {
	DeviceType string `json:"device_type" binding:"required"`
	ConfigText string `json:"config_text" binding:"required"`
}

func NewNetworkHandler(networkService *app.NetworkService) *NetworkHandler {
	return &NetworkHandler{networkService: networkService}
}

func (h *NetworkHandler) Discover(c *gin.Context) {
	response.OK(c, h.networkService.Discover())
}

func (h *NetworkHandler) Audit(c *gin.Context) {
	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "device_names is required")
		return
	}
	result, err := h.networkService.Audit(app.AuditInput{DeviceNames: req.DeviceNames, AuditTypes: req.AuditTypes})
	if err != nil {
		writeServiceError(c, err, "start audit failed")
		return
	}
	response.OK(c, result)
}

func (h *NetworkHandler) ListAudits(c *gin.Context) {
	results, err := h.networkService.ListAudits(c.Query("audit_id"), queryInt(c, "limit", 50))
	if err != nil {
		writeServiceError(c, err, "list audits failed")
		return
	}
	response.OK(c, gin.H{"audits": results, "count": len(results)})
}

func (h *NetworkHandler) Topology(c *gin.Context) {
	response.OK(c, h.networkService.Topology())
}

func (h *NetworkHandler) Validate(c *gin.Context) {
	var req ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "device_type and config_text are required")
		return
	}
	result, err := h.networkService.Validate(req.DeviceType, req.ConfigText)
	if err != nil {
		writeServiceError(c, err, "validate failed")
		return
	}
	response.OK(c, result)
}

func (h *NetworkHandler) DeviceTypes(c *gin.Context) {
	response.OK(c, gin.H{
		"device_types": h.networkService.DeviceTypes(),
		"audit_types":  h.networkService.AuditTypes(),
	})
}
