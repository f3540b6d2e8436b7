package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neuromentor/internal/model"
)

type UsageLogRepository struct {
	db *gorm.DB
}

func NewUsageLogRepository(db *gorm.DB) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

// Record folds one usage event into the user's row for the event's UTC day.
func (r *UsageLogRepository) Record(ctx context.Context, event model.UsageEvent) error {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now()
	}
	sessions := 0
	if event.NewSession {
		sessions = 1
	}

	row := model.UsageLog{
		UserID:        event.UserID,
		Date:          model.UsageDay(occurred),
		RequestsCount: 1,
		TokensUsed:    event.Tokens,
		SessionCount:  sessions,
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
			DoUpdates: clause.Assignments(map[string]any{
				"requests_count": gorm.Expr("requests_count + ?", 1),
				"tokens_used":    gorm.Expr("tokens_used + ?", event.Tokens),
				"session_count":  gorm.Expr("session_count + ?", sessions),
			}),
		}).Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("record usage failed: %w", err)
	}
	return nil
}

func (r *UsageLogRepository) ListByUserID(ctx context.Context, userID uint, limit int) ([]model.UsageLog, error) {
	if limit <= 0 {
		limit = 30
	}
	var logs []model.UsageLog
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("date DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list usage logs failed: %w", err)
	}
	return logs, nil
}
