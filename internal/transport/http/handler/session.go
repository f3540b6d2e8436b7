package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"neuromentor/internal/app"
	"neuromentor/internal/model"
	"neuromentor/internal/transport/http/response"
)

type SessionHandler struct {
	sessionService *app.SessionService
}

func NewSessionHandler(sessionService *app.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req SessionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request payload")
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "User not found")
		default:
			response.Error(c, http.StatusInternalServerError, "create session failed")
		}
		return
	}

	response.OK(c, newSessionResponse(session))
}

// Messages lists the caller's own session transcript in chronological order.
// The owner is named by the user_id query parameter.
func (h *SessionHandler) Messages(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		response.Error(c, http.StatusUnauthorized, "user_id is required")
		return
	}
	h.listMessages(c, func(ctx context.Context, sessionID uint, limit int) ([]model.Message, error) {
		return h.sessionService.ListOwnMessages(ctx, uint(userID), sessionID, limit)
	})
}

// AdminMessages lists any session transcript. Mounted behind AuthJWT.
func (h *SessionHandler) AdminMessages(c *gin.Context) {
	h.listMessages(c, h.sessionService.ListMessages)
}

func (h *SessionHandler) listMessages(c *gin.Context, list func(context.Context, uint, int) ([]model.Message, error)) {
	sessionID, ok := parseIDParam(c, "id")
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid session id")
		return
	}
	limit, ok := parseLimitQuery(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "invalid limit")
		return
	}

	messages, err := list(c.Request.Context(), sessionID, limit)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "list messages failed")
		}
		return
	}

	response.OK(c, newMessageResponses(messages))
}
