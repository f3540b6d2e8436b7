package app

import (
	"context"

	"neuromentor/internal/model"
	"neuromentor/internal/repository"
)

type SessionService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	messageRepo *repository.MessageRepository
}

func NewSessionService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	messageRepo *repository.MessageRepository,
) *SessionService {
	return &SessionService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
	}
}

func (s *SessionService) Create(ctx context.Context, userID uint) (*model.ChatSession, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.sessionRepo.Create(ctx, user.ID)
}

// ListMessages returns any session's transcript. Only the admin surface calls it.
func (s *SessionService) ListMessages(ctx context.Context, sessionID uint, limit int) ([]model.Message, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return s.messageRepo.ListBySession(ctx, session.ID, limit)
}

// ListOwnMessages returns the transcript only when userID owns the session.
// A foreign session reports ErrSessionNotFound, the same as a missing one.
func (s *SessionService) ListOwnMessages(ctx context.Context, userID, sessionID uint, limit int) ([]model.Message, error) {
	if userID == 0 {
		return nil, ErrSessionNotFound
	}
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return s.messageRepo.ListBySession(ctx, session.ID, limit)
}
