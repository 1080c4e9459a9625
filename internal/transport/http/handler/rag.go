package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netauto/internal/app"
	"netauto/internal/transport/http/response"
)

type RAGHandler struct {
	ragService *app.RAGService
}

type RAGQueryRequest struct {
	Query    string                 `json:"query" binding:"required"`
	NResults int                    `json:"n_results" binding:"omitempty,min=1,max=50"`
	Filter   map[string]interface{} `json:"filter"`
	Model    string                 `json:"model"`
}

func NewRAGHandler(ragService *app.RAGService) *RAGHandler {
	return &RAGHandler{ragService: ragService}
}

// Query answers with retrieved context. An LLM failure is a 500 that still
// carries the result body.
func (h *RAGHandler) Query(c *gin.Context) {
	var req RAGQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "query is required")
		return
	}

	result, err := h.ragService.Answer(c.Request.Context(), app.AnswerInput{
		Query:  req.Query,
		K:      req.NResults,
		Filter: req.Filter,
		Model:  req.Model,
	})
	if err != nil {
		writeServiceError(c, err, "rag query failed")
		return
	}
	if !result.Success {
		response.WithStatus(c, http.StatusInternalServerError, response.CodeLLMFailed, result.Error, result)
		return
	}
	response.OK(c, result)
}
