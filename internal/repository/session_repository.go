package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"neuromentor/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, userID uint) (*model.ChatSession, error) {
	session := &model.ChatSession{UserID: userID, IsActive: true}
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return createSession(tx, session)
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// ResolveOrCreate picks the session a chat message belongs to. A zero
// sessionID selects the user's newest session, creating one when the user has
// none. A non-zero sessionID is kept when it exists and belongs to userID;
// otherwise a new server-assigned session is created. created reports whether
// a row was inserted.
func (r *SessionRepository) ResolveOrCreate(ctx context.Context, sessionID, userID uint) (resolved uint, created bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.ChatSession
		var findErr error
		if sessionID == 0 {
			findErr = tx.Where("user_id = ?", userID).Order("id DESC").First(&existing).Error
		} else {
			findErr = tx.Where("id = ? AND user_id = ?", sessionID, userID).First(&existing).Error
		}
		if findErr == nil {
			resolved = existing.ID
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("query session failed: %w", findErr)
		}

		session := &model.ChatSession{UserID: userID, IsActive: true}
		if err := createSession(tx, session); err != nil {
			return err
		}
		resolved = session.ID
		created = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return resolved, created, nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id uint) (*model.ChatSession, error) {
	var session model.ChatSession
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return &session, nil
}

func (r *SessionRepository) ListByUserID(ctx context.Context, userID uint) ([]model.ChatSession, error) {
	var sessions []model.ChatSession
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions failed: %w", err)
	}
	return sessions, nil
}

func createSession(tx *gorm.DB, session *model.ChatSession) error {
	if err := tx.Create(session).Error; err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}
