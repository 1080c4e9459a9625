package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netauto/internal/app"
	"netauto/internal/transport/http/response"
)

type AIHandler struct {
	assistant *app.AssistantService
}

type AnalyzeConfigRequest struct {
	ConfigText string `json:"config_text" binding:"required"`
	DeviceName string `json:"device_name"`
}

type GenerateCommandsRequest struct {
	TaskDescription string `json:"task_description" binding:"required"`
	DeviceType      string `json:"device_type"`
}

type TroubleshootRequest struct {
	IssueDescription string `json:"issue_description" binding:"required"`
	DeviceLogs       string `json:"device_logs"`
}

func NewAIHandler(assistant *app.AssistantService) *AIHandler {
	return &AIHandler{assistant: assistant}
}

func (h *AIHandler) OllamaHealth(c *gin.Context) {
	status := h.assistant.Health(c.Request.Context())
	if status.Status != "healthy" {
		response.WithStatus(c, http.StatusServiceUnavailable, response.CodeUnavailable, "ollama unhealthy", status)
		return
	}
	response.OK(c, status)
}

func (h *AIHandler) OllamaModels(c *gin.Context) {
	models, err := h.assistant.Models(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailed, err.Error())
		return
	}
	response.OK(c, models)
}

func (h *AIHandler) AnalyzeConfig(c *gin.Context) {
	var req AnalyzeConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "config_text is required")
		return
	}
	result, err := h.assistant.AnalyzeConfig(c.Request.Context(), req.ConfigText, req.DeviceName)
	if err != nil {
		writeServiceError(c, err, "analyze config failed")
		return
	}
	respondLLM(c, result.Success, result.Error, result)
}

func (h *AIHandler) GenerateCommands(c *gin.Context) {
	var req GenerateCommandsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "task_description is required")
		return
	}
	result, err := h.assistant.GenerateCommands(c.Request.Context(), req.TaskDescription, req.DeviceType)
	if err != nil {
		writeServiceError(c, err, "generate commands failed")
		return
	}
	respondLLM(c, result.Success, result.Error, result)
}

func (h *AIHandler) Troubleshoot(c *gin.Context) {
	var req TroubleshootRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "issue_description is required")
		return
	}
	result, err := h.assistant.Troubleshoot(c.Request.Context(), req.IssueDescription, req.DeviceLogs)
	if err != nil {
		writeServiceError(c, err, "troubleshoot failed")
		return
	}
	respondLLM(c, result.Success, result.Error, result)
}

func respondLLM(c *gin.Context, ok bool, errMsg string, data interface{}) {
	if !ok {
		response.WithStatus(c, http.StatusInternalServerError, response.CodeLLMFailed, errMsg, data)
		return
	}
	response.OK(c, data)
}
