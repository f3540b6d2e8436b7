package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"neuromentor/internal/model"
)

const (
	DefaultHistoryLimit    = 10
	DefaultTranscriptLimit = 50
	maxTranscriptLimit     = 200
)

var ErrInvalidMessage = errors.New("invalid message")

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(ctx context.Context, sessionID uint, sender, text string, tokens int) (*model.Message, error) {
	if sender != model.SenderUser && sender != model.SenderAI {
		return nil, fmt.Errorf("%w: unknown sender %q", ErrInvalidMessage, sender)
	}
	if tokens < 0 {
		return nil, fmt.Errorf("%w: negative token usage %d", ErrInvalidMessage, tokens)
	}

	message := &model.Message{
		SessionID:   sessionID,
		Sender:      sender,
		MessageText: text,
		TokenUsage:  tokens,
	}
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(message).Error
	}); err != nil {
		return nil, fmt.Errorf("create message failed: %w", err)
	}
	return message, nil
}

// FetchHistory returns the latest limit turns of a session, oldest first.
func (r *MessageRepository) FetchHistory(ctx context.Context, sessionID uint, limit int) ([]model.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	var messages []model.Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("fetch history failed: %w", err)
	}
	slices.Reverse(messages)

	history := make([]model.HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		history = append(history, model.HistoryEntry{
			Role:    model.RoleForSender(msg.Sender),
			Content: msg.MessageText,
		})
	}
	return history, nil
}

func (r *MessageRepository) ListBySession(ctx context.Context, sessionID uint, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = DefaultTranscriptLimit
	}
	if limit > maxTranscriptLimit {
		limit = maxTranscriptLimit
	}

	var messages []model.Message
	if err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}
