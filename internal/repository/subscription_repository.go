package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"neuromentor/internal/model"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// EnsureDefault gives a user the free plan unless any subscription row exists.
func (r *SubscriptionRepository) EnsureDefault(ctx context.Context, userID uint) (*model.Subscription, error) {
	var sub model.Subscription
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).Order("id ASC").First(&sub).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("query subscription failed: %w", err)
		}

		sub = model.Subscription{
			UserID:     userID,
			PlanName:   model.DefaultPlanName,
			IsActive:   true,
			UsageLimit: model.DefaultUsageLimit,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return fmt.Errorf("create subscription failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepository) ListByUserID(ctx context.Context, userID uint) ([]model.Subscription, error) {
	var subs []model.Subscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("start_date DESC").Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("list subscriptions failed: %w", err)
	}
	return subs, nil
}
