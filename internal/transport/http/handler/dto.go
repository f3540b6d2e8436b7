package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"neuromentor/internal/model"
)

type UserCreateRequest struct {
	Name   string  `json:"name" binding:"required,max=255"`
	Gender *string `json:"gender" binding:"omitempty,max=20"`
	Age    *int    `json:"age" binding:"omitempty,gte=0,lte=150"`
}

type UserResponse struct {
	ID         uint      `json:"id"`
	TelegramID *int64    `json:"telegram_id"`
	Username   *string   `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   *string   `json:"last_name"`
	Gender     *string   `json:"gender"`
	Age        *int      `json:"age"`
	CreatedAt  time.Time `json:"created_at"`
}

type ChatRequest struct {
	UserID    uint   `json:"user_id"`
	SessionID uint   `json:"session_id"`
	Message   string `json:"message" binding:"required"`
}

type AIResponse struct {
	Answer    string `json:"answer"`
	SessionID uint   `json:"session_id"`
}

type SessionCreateRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type SessionResponse struct {
	ID        uint       `json:"id"`
	UserID    uint       `json:"user_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	IsActive  bool       `json:"is_active"`
}

type MessageResponse struct {
	ID          uint      `json:"id"`
	SessionID   uint      `json:"session_id"`
	Sender      string    `json:"sender"`
	MessageText string    `json:"message_text"`
	CreatedAt   time.Time `json:"created_at"`
	TokenUsage  int       `json:"token_usage"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		TelegramID: u.TelegramID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Gender:     u.Gender,
		Age:        u.Age,
		CreatedAt:  u.CreatedAt,
	}
}

func newSessionResponse(s *model.ChatSession) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		UserID:    s.UserID,
		StartedAt: s.StartedAt,
		EndedAt:   s.EndedAt,
		IsActive:  s.IsActive,
	}
}

func newMessageResponses(messages []model.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, MessageResponse{
			ID:          m.ID,
			SessionID:   m.SessionID,
			Sender:      m.Sender,
			MessageText: m.MessageText,
			CreatedAt:   m.CreatedAt,
			TokenUsage:  m.TokenUsage,
		})
	}
	return out
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseLimitQuery(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, false
	}
	return limit, true
}
