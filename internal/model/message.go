package model

import "time"

const (
	SenderUser = "user"
	SenderAI   = "ai"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SessionID   uint      `gorm:"not null;index" json:"session_id"`
	Sender      string    `gorm:"size:50;not null" json:"sender"`
	MessageText string    `gorm:"type:text;not null" json:"message_text"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	TokenUsage  int       `gorm:"not null;default:0" json:"token_usage"`
}

func (Message) TableName() string {
	return "messages"
}

// HistoryEntry is one prior turn in the shape the chat-completion API expects.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RoleForSender maps a stored sender to a chat-completion role.
func RoleForSender(sender string) string {
	if sender == SenderUser {
		return RoleUser
	}
	return RoleAssistant
}
