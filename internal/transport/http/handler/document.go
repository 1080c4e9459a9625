package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"netauto/internal/app"
	"netauto/internal/transport/http/response"
	"netauto/internal/vectorstore"
)

// VectorAdmin is the maintenance surface of the vector store.
type VectorAdmin interface {
	HealthCheck(ctx context.Context) vectorstore.Health
	Stats(ctx context.Context) vectorstore.Stats
	Reset(ctx context.Context) bool
}

type DocumentHandler struct {
	docService *app.DocumentService
	vectors    VectorAdmin
}

type AddDocumentRequest struct {
	ID       string                 `json:"id"`
	Content  string                 `json:"content" binding:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

type SearchDocumentsRequest struct {
	Query    string                 `json:"query" binding:"required"`
	NResults int                    `json:"n_results" binding:"omitempty,min=1,max=50"`
	Filter   map[string]interface{} `json:"filter"`
}

type ScrapeRequest struct {
	URL string `json:"url" binding:"required"`
}

type UpdateVectorRequest struct {
	Content  string                 `json:"content" binding:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

func NewDocumentHandler(docService *app.DocumentService, vectors VectorAdmin) *DocumentHandler {
	return &DocumentHandler{docService: docService, vectors: vectors}
}

func (h *DocumentHandler) Add(c *gin.Context) {
	var req AddDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "content is required")
		return
	}
	id, err := h.docService.AddDocument(c.Request.Context(), app.AddDocumentInput{
		ID:       req.ID,
		Content:  req.Content,
		Metadata: req.Metadata,
	})
	if err != nil {
		writeServiceError(c, err, "add document failed")
		return
	}
	response.Created(c, gin.H{
		"success":     true,
		"document_id": id,
		"message":     "Document added successfully",
	})
}

func (h *DocumentHandler) Search(c *gin.Context) {
	var req SearchDocumentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "query is required")
		return
	}
	results, err := h.docService.Search(c.Request.Context(), app.SearchInput{
		Query:  req.Query,
		K:      req.NResults,
		Filter: req.Filter,
	})
	if err != nil {
		writeServiceError(c, err, "search documents failed")
		return
	}
	response.OK(c, gin.H{
		"success": true,
		"query":   req.Query,
		"results": results,
		"count":   len(results),
	})
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "no file provided")
		return
	}
	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read upload failed")
		return
	}
	defer f.Close()

	record, err := h.docService.Upload(c.Request.Context(), app.UploadInput{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		Reader:      f,
	})
	if err != nil {
		if record != nil {
			response.WithStatus(c, http.StatusUnprocessableEntity, response.CodeBadRequest, err.Error(), record)
			return
		}
		writeServiceError(c, err, "upload document failed")
		return
	}
	response.Created(c, gin.H{
		"message":  "Document processed successfully",
		"filename": record.OriginalFilename,
		"document": record,
	})
}

func (h *DocumentHandler) Scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "url is required")
		return
	}
	result, err := h.docService.Scrape(c.Request.Context(), req.URL)
	if err != nil {
		writeServiceError(c, err, "scrape failed")
		return
	}
	response.Created(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docService.List(c.Query("status"), queryInt(c, "limit", 100))
	if err != nil {
		writeServiceError(c, err, "list documents failed")
		return
	}
	response.OK(c, gin.H{"documents": docs, "count": len(docs)})
}

func (h *DocumentHandler) GetVector(c *gin.Context) {
	doc, err := h.docService.GetVector(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err, "get document failed")
		return
	}
	response.OK(c, doc)
}

func (h *DocumentHandler) UpdateVector(c *gin.Context) {
	var req UpdateVectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "content is required")
		return
	}
	id := c.Param("id")
	if err := h.docService.UpdateVector(c.Request.Context(), id, req.Content, req.Metadata); err != nil {
		writeServiceError(c, err, "update document failed")
		return
	}
	response.OK(c, gin.H{"success": true, "document_id": id})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := h.docService.Delete(c.Request.Context(), id); err != nil {
		writeServiceError(c, err, "delete document failed")
		return
	}
	response.OK(c, gin.H{"deleted_document_id": id})
}

func (h *DocumentHandler) VectorHealth(c *gin.Context) {
	health := h.vectors.HealthCheck(c.Request.Context())
	if health.Status != "healthy" {
		response.WithStatus(c, http.StatusServiceUnavailable, response.CodeUnavailable, "vector store unhealthy", health)
		return
	}
	response.OK(c, health)
}

func (h *DocumentHandler) VectorStats(c *gin.Context) {
	response.OK(c, h.vectors.Stats(c.Request.Context()))
}

func (h *DocumentHandler) VectorReset(c *gin.Context) {
	if !h.vectors.Reset(c.Request.Context()) {
		response.Error(c, http.StatusInternalServerError, response.CodeVectorStore, "reset vector store failed")
		return
	}
	response.OK(c, gin.H{"success": true, "message": "Collection reset"})
}
