package model

import "time"

const (
	AdminRoleOwner     = "owner"
	AdminRoleAdmin     = "admin"
	AdminRoleModerator = "moderator"
)

type Admin struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	Role         string    `gorm:"size:50;not null;default:moderator" json:"role"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Admin) TableName() string {
	return "admins"
}

func ValidAdminRole(role string) bool {
	switch role {
	case AdminRoleOwner, AdminRoleAdmin, AdminRoleModerator:
		return true
	}
	return false
}

// All lists every persisted table in migration order.
func All() []any {
	return []any{
		&User{},
		&ChatSession{},
		&Message{},
		&AIRequest{},
		&Subscription{},
		&UsageLog{},
		&Admin{},
	}
}
