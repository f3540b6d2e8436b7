package model

import "time"

const (
	DefaultPlanName   = "free"
	DefaultUsageLimit = 100
)

type Subscription struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	PlanName     string     `gorm:"size:50;not null;default:free" json:"plan_name"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	StartDate    time.Time  `gorm:"autoCreateTime" json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	UsageLimit   int        `gorm:"not null;default:100" json:"usage_limit"`
	UsedRequests int        `gorm:"not null;default:0" json:"used_requests"`
	AutoRenew    bool       `gorm:"not null;default:false" json:"auto_renew"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
