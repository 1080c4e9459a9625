package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"netauto/internal/app"
	"netauto/internal/transport/http/middleware"
	"netauto/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

type SendMessageRequest struct {
	Message    string `json:"message" binding:"required"`
	SessionID  string `json:"session_id" binding:"max=100"`
	UseContext bool   `json:"use_context"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "message is required")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:     middleware.UserID(c),
		SessionID:  req.SessionID,
		Content:    req.Message,
		UseContext: req.UseContext,
	})
	if err != nil {
		writeServiceError(c, err, "send message failed")
		return
	}
	response.OK(c, result)
}

func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("session_id")
	history, err := h.chatService.GetHistory(c.Request.Context(), middleware.UserID(c), sessionID, queryInt(c, "limit", 50))
	if err != nil {
		writeServiceError(c, err, "get history failed")
		return
	}
	response.OK(c, gin.H{"session_id": sessionID, "messages": history, "count": len(history)})
}

func (h *ChatHandler) ListSessions(c *gin.Context) {
	sessions, err := h.chatService.ListSessions(middleware.UserID(c))
	if err != nil {
		writeServiceError(c, err, "list sessions failed")
		return
	}
	response.OK(c, sessions)
}
