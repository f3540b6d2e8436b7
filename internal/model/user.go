package model

import "time"

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	TelegramID *int64    `gorm:"uniqueIndex" json:"telegram_id"`
	Username   *string   `gorm:"size:255" json:"username"`
	FirstName  string    `gorm:"size:255;index" json:"first_name"`
	LastName   *string   `gorm:"size:255" json:"last_name"`
	Gender     *string   `gorm:"size:50" json:"gender"`
	Age        *int      `json:"age"`
	CreatedAt  time.Time `json:"created_at"`

	Sessions      []ChatSession  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Subscriptions []Subscription `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	UsageLogs     []UsageLog     `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}
