package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"neuromentor/internal/ai"
	"neuromentor/internal/app"
	"neuromentor/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.Chat(c.Request.Context(), app.ChatInput{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Message:   req.Message,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMessageEmpty):
			response.Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "User not found")
		case errors.Is(err, ai.ErrProvider):
			response.Error(c, http.StatusInternalServerError, err.Error())
		default:
			slog.ErrorContext(c.Request.Context(), "chat failed", "user_id", req.UserID, "error", err)
			response.Error(c, http.StatusInternalServerError, "chat failed")
		}
		return
	}

	response.OK(c, AIResponse{Answer: result.Answer, SessionID: result.SessionID})
}
