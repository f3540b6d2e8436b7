package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gorm.io/datatypes"

	"neuromentor/internal/ai"
	"neuromentor/internal/model"
	"neuromentor/internal/repository"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageEmpty    = errors.New("message content is empty")
)

// Responder produces the assistant reply for one turn.
type Responder interface {
	GetReply(ctx context.Context, profile ai.Profile, history []model.HistoryEntry, message string) (*ai.Reply, error)
}

type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID uint, limit int) ([]model.HistoryEntry, bool, error)
	SetHistory(ctx context.Context, sessionID uint, limit int, entries []model.HistoryEntry) error
	Invalidate(ctx context.Context, sessionID uint) error
}

type UsageRecorder interface {
	Record(ctx context.Context, event model.UsageEvent) error
}

type ChatDependencies struct {
	Users      *repository.UserRepository
	Sessions   *repository.SessionRepository
	Messages   *repository.MessageRepository
	AIRequests *repository.AIRequestRepository
	Responder  Responder

	// Optional.
	HistoryCache HistoryCache
	Usage        UsageRecorder
	Logger       *slog.Logger

	HistoryLimit int
}

type ChatService struct {
	userRepo      *repository.UserRepository
	sessionRepo   *repository.SessionRepository
	messageRepo   *repository.MessageRepository
	aiRequestRepo *repository.AIRequestRepository
	responder     Responder
	historyCache  HistoryCache
	usage         UsageRecorder
	logger        *slog.Logger
	historyLimit  int
}

type ChatInput struct {
	UserID    uint
	SessionID uint
	Message   string
}

type ChatResult struct {
	Answer    string
	SessionID uint
}

func NewChatService(deps ChatDependencies) *ChatService {
	if deps.HistoryLimit <= 0 {
		deps.HistoryLimit = repository.DefaultHistoryLimit
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &ChatService{
		userRepo:      deps.Users,
		sessionRepo:   deps.Sessions,
		messageRepo:   deps.Messages,
		aiRequestRepo: deps.AIRequests,
		responder:     deps.Responder,
		historyCache:  deps.HistoryCache,
		usage:         deps.Usage,
		logger:        deps.Logger.With("component", "chat"),
		historyLimit:  deps.HistoryLimit,
	}
}

// Chat runs one exchange. Steps that already committed are not undone when a
// later step fails, so a user message without a reply is a reachable state.
func (s *ChatService) Chat(ctx context.Context, input ChatInput) (*ChatResult, error) {
	text := strings.TrimSpace(input.Message)
	if text == "" {
		return nil, ErrMessageEmpty
	}

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	sessionID, created, err := s.sessionRepo.ResolveOrCreate(ctx, input.SessionID, user.ID)
	if err != nil {
		return nil, err
	}
	if input.SessionID != 0 && sessionID != input.SessionID {
		s.logger.Info("session replaced", "user_id", user.ID, "requested", input.SessionID, "session_id", sessionID)
	}

	history, err := s.loadHistory(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	inbound, err := s.messageRepo.Append(ctx, sessionID, model.SenderUser, text, 0)
	if err != nil {
		return nil, err
	}
	// The cached window follows every committed append, whatever happens next.
	window := appendWindow(history, s.historyLimit, model.HistoryEntry{Role: model.RoleUser, Content: text})
	defer func() { s.storeHistory(ctx, sessionID, window) }()

	started := time.Now()
	reply, replyErr := s.responder.GetReply(ctx, ai.ProfileFromUser(user), history, text)
	s.auditRequest(ctx, inbound.ID, text, history, reply, replyErr, time.Since(started))
	if replyErr != nil {
		s.logger.Error("generate reply failed", "session_id", sessionID, "error", replyErr)
		return nil, fmt.Errorf("generate reply failed: %w", replyErr)
	}

	tokens := max(reply.TotalTokens, 0)
	if _, err := s.messageRepo.Append(ctx, sessionID, model.SenderAI, reply.Text, tokens); err != nil {
		return nil, err
	}
	window = appendWindow(window, s.historyLimit, model.HistoryEntry{Role: model.RoleAssistant, Content: reply.Text})

	s.recordUsage(ctx, model.UsageEvent{
		UserID:     user.ID,
		SessionID:  sessionID,
		Tokens:     tokens,
		NewSession: created,
		OccurredAt: time.Now().UTC(),
	})

	return &ChatResult{Answer: reply.Text, SessionID: sessionID}, nil
}

// loadHistory prefers the cached window. A miss reads the database; the
// window is cached again once the exchange appends to it.
func (s *ChatService) loadHistory(ctx context.Context, sessionID uint) ([]model.HistoryEntry, error) {
	if s.historyCache != nil {
		cached, hit, err := s.historyCache.GetHistory(ctx, sessionID, s.historyLimit)
		if err != nil {
			s.logger.Warn("history cache read failed", "session_id", sessionID, "error", err)
		} else if hit {
			return cached, nil
		}
	}

	return s.messageRepo.FetchHistory(ctx, sessionID, s.historyLimit)
}

// storeHistory writes the window through to the cache. When that fails the
// session is invalidated so readers fall back to the database.
func (s *ChatService) storeHistory(ctx context.Context, sessionID uint, window []model.HistoryEntry) {
	if s.historyCache == nil {
		return
	}
	err := s.historyCache.SetHistory(ctx, sessionID, s.historyLimit, window)
	if err == nil {
		return
	}
	s.logger.Warn("history cache write failed", "session_id", sessionID, "error", err)
	if err := s.historyCache.Invalidate(ctx, sessionID); err != nil {
		s.logger.Warn("history cache invalidate failed", "session_id", sessionID, "error", err)
	}
}

// appendWindow returns a copy of history with entries added, keeping the
// newest limit entries.
func appendWindow(history []model.HistoryEntry, limit int, entries ...model.HistoryEntry) []model.HistoryEntry {
	window := make([]model.HistoryEntry, 0, len(history)+len(entries))
	window = append(window, history...)
	window = append(window, entries...)
	if limit > 0 && len(window) > limit {
		window = window[len(window)-limit:]
	}
	return window
}

type auditRequestPayload struct {
	Message string               `json:"message"`
	History []model.HistoryEntry `json:"history"`
	Prompt  []model.HistoryEntry `json:"prompt,omitempty"`
}

type auditResponsePayload struct {
	Answer      string `json:"answer"`
	TotalTokens int    `json:"total_tokens"`
}

func (s *ChatService) auditRequest(
	ctx context.Context,
	messageID uint,
	text string,
	history []model.HistoryEntry,
	reply *ai.Reply,
	replyErr error,
	elapsed time.Duration,
) {
	if s.aiRequestRepo == nil {
		return
	}

	reqPayload := auditRequestPayload{Message: text, History: history}
	if reply != nil {
		reqPayload.Prompt = reply.Prompt
	}
	reqRaw, err := json.Marshal(reqPayload)
	if err != nil {
		s.logger.Warn("marshal ai request audit failed", "error", err)
		return
	}

	elapsedMS := int(elapsed.Milliseconds())
	record := &model.AIRequest{
		MessageID:      messageID,
		RequestPayload: datatypes.JSON(reqRaw),
		ResponseTimeMS: &elapsedMS,
	}

	if replyErr != nil {
		errMsg := replyErr.Error()
		record.ErrorMessage = &errMsg
		var providerErr *ai.ProviderError
		if errors.As(replyErr, &providerErr) && providerErr.StatusCode > 0 {
			status := providerErr.StatusCode
			record.StatusCode = &status
		}
	} else {
		status := http.StatusOK
		record.StatusCode = &status
		respRaw, err := json.Marshal(auditResponsePayload{Answer: reply.Text, TotalTokens: reply.TotalTokens})
		if err == nil {
			record.ResponsePayload = datatypes.JSON(respRaw)
		}
	}

	if err := s.aiRequestRepo.Create(ctx, record); err != nil {
		s.logger.Warn("store ai request audit failed", "message_id", messageID, "error", err)
	}
}

func (s *ChatService) recordUsage(ctx context.Context, event model.UsageEvent) {
	if s.usage == nil {
		return
	}
	if err := s.usage.Record(ctx, event); err != nil {
		s.logger.Warn("record usage failed", "user_id", event.UserID, "error", err)
	}
}
