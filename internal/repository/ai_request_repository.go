package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"neuromentor/internal/model"
)

type AIRequestRepository struct {
	db *gorm.DB
}

func NewAIRequestRepository(db *gorm.DB) *AIRequestRepository {
	return &AIRequestRepository{db: db}
}

func (r *AIRequestRepository) Create(ctx context.Context, record *model.AIRequest) error {
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(record).Error
	}); err != nil {
		return fmt.Errorf("create ai request failed: %w", err)
	}
	return nil
}

func (r *AIRequestRepository) ListByMessageID(ctx context.Context, messageID uint) ([]model.AIRequest, error) {
	var records []model.AIRequest
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageID).Order("id ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list ai requests failed: %w", err)
	}
	return records, nil
}
