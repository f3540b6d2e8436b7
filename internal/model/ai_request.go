package model

import (
	"time"

	"gorm.io/datatypes"
)

// AIRequest is the audit record of one provider call, keyed by the inbound
// user message that triggered it.
type AIRequest struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	MessageID       uint           `gorm:"not null;index" json:"message_id"`
	RequestPayload  datatypes.JSON `json:"request_payload"`
	ResponsePayload datatypes.JSON `json:"response_payload"`
	ResponseTimeMS  *int           `json:"response_time_ms"`
	StatusCode      *int           `json:"status_code"`
	ErrorMessage    *string        `gorm:"type:text" json:"error_message"`
	CreatedAt       time.Time      `json:"created_at"`

	Message Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

func (AIRequest) TableName() string {
	return "ai_requests"
}
