package model

import "time"

// UsageLog aggregates one user's activity for one UTC day.
type UsageLog struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_usage_user_date,priority:1" json:"user_id"`
	Date          time.Time `gorm:"not null;uniqueIndex:idx_usage_user_date,priority:2" json:"date"`
	RequestsCount int       `gorm:"not null;default:0" json:"requests_count"`
	TokensUsed    int       `gorm:"not null;default:0" json:"tokens_used"`
	SessionCount  int       `gorm:"not null;default:0" json:"session_count"`
}

func (UsageLog) TableName() string {
	return "usage_logs"
}

// UsageEvent is emitted once per completed chat exchange.
type UsageEvent struct {
	UserID     uint      `json:"user_id"`
	SessionID  uint      `json:"session_id"`
	Tokens     int       `json:"tokens"`
	NewSession bool      `json:"new_session"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UsageDay truncates t to the UTC day used as the usage_logs bucket.
func UsageDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
