package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"neuromentor/internal/ai"
	appsvc "neuromentor/internal/app"
	"neuromentor/internal/bootstrap"
	"neuromentor/internal/config"
	"neuromentor/internal/model"
	"neuromentor/internal/testutil"
)

type stubResponder struct {
	err error
}

func (s *stubResponder) GetReply(_ context.Context, profile ai.Profile, history []model.HistoryEntry, message string) (*ai.Reply, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &ai.Reply{Text: fmt.Sprintf("%s said %q after %d turns", profile.Name, message, len(history)), TotalTokens: 11}, nil
}

type testServer struct {
	router    *gin.Engine
	db        *gorm.DB
	services  Services
	responder *stubResponder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	app := &bootstrap.App{
		Config: &config.Config{
			App: config.AppConfig{
				Name:       "NeuroMentor",
				Env:        "test",
				GinMode:    gin.TestMode,
				BasePath:   "/api",
				StaticDir:  "static",
				Favicon:    "favicon.ico",
				RedocJS:    "redoc.standalone.js",
				SwaggerJS:  "swagger-ui-bundle.js",
				SwaggerCSS: "swagger-ui.css",
			},
			Auth: config.AuthConfig{JWTSecret: "test-secret", JWTExpireMinute: 10},
			Chat: config.ChatConfig{HistoryLimit: 10},
		},
		DB:        db,
		StartedAt: time.Now(),
	}

	responder := &stubResponder{}
	services := BuildServices(app, responder)
	router, err := NewEngine(app, services)
	require.NoError(t, err)
	return &testServer{router: router, db: db, services: services, responder: responder}
}

func (s *testServer) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestWelcomeAndVersionRoots(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/api/"} {
		rec := s.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		body := decode[map[string]string](t, rec)
		assert.Equal(t, "This is the NeuroMentor API. Check http://example.com/api for more info.", body["welcome_text"])
	}

	for _, path := range []string{"/api", "/api/latest", "/api/v1"} {
		rec := s.do(t, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"message": "NeuroMentor API 1 active"}`, rec.Body.String())
	}
}

func TestDocsRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/openapi.json", "/api/docs", "/api/redoc", "/api/docs/oauth2-redirect"} {
		rec := s.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	redirects := map[string]string{
		"/api/v1/docs":         "/api/docs",
		"/api/v1/redoc":        "/api/redoc",
		"/api/v1/openapi.json": "/api/openapi.json",
	}
	for from, to := range redirects {
		rec := s.do(t, http.MethodGet, from, nil)
		assert.Equal(t, http.StatusMovedPermanently, rec.Code, from)
		assert.Equal(t, to, rec.Header().Get("Location"), from)
	}
}

func TestRegisterAndChatFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/user", map[string]any{"name": "Ivan", "gender": "male", "age": 30})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	user := decode[map[string]any](t, rec)
	userID := uint(user["id"].(float64))
	assert.Equal(t, "Ivan", user["first_name"])
	assert.Equal(t, "male", user["gender"])

	again := decode[map[string]any](t, s.do(t, http.MethodPost, "/api/user", map[string]any{"name": "Ivan", "gender": "male", "age": 30}))
	assert.Equal(t, user["id"], again["id"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/latest/user/%d", userID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/chat", map[string]any{"user_id": userID, "session_id": 0, "message": "hello"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reply := decode[map[string]any](t, rec)
	assert.Equal(t, `Ivan said "hello" after 0 turns`, reply["answer"])
	sessionID := uint(reply["session_id"].(float64))
	assert.NotZero(t, sessionID)

	rec = s.do(t, http.MethodPost, "/api/v1/chat", map[string]any{"user_id": userID, "session_id": sessionID, "message": "again"})
	require.Equal(t, http.StatusOK, rec.Code)
	reply = decode[map[string]any](t, rec)
	assert.Equal(t, `Ivan said "again" after 2 turns`, reply["answer"])
	assert.EqualValues(t, sessionID, reply["session_id"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/session/%d/messages?user_id=%d", sessionID, userID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decode[[]map[string]any](t, rec)
	require.Len(t, messages, 4)
	assert.Equal(t, "user", messages[0]["sender"])
	assert.EqualValues(t, 0, messages[0]["token_usage"])
	assert.Equal(t, "ai", messages[1]["sender"])
	assert.EqualValues(t, 11, messages[1]["token_usage"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/session/%d/messages?user_id=%d&limit=1", sessionID, userID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)

	rec = s.do(t, http.MethodPost, "/api/session", map[string]any{"user_id": userID})
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[map[string]any](t, rec)
	assert.NotEqual(t, float64(sessionID), session["id"])
	assert.Equal(t, true, session["is_active"])
}

func TestChatErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/chat", map[string]any{"user_id": 404, "message": "hello"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error": "User not found"}`, rec.Body.String())
	var sessions int64
	require.NoError(t, s.db.Model(&model.ChatSession{}).Count(&sessions).Error)
	assert.Zero(t, sessions)

	rec = s.do(t, http.MethodPost, "/api/chat", `{"user_id": 1`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	user, err := s.services.Users.Register(context.Background(), appsvc.RegisterInput{Name: "Maria"})
	require.NoError(t, err)

	rec = s.do(t, http.MethodPost, "/api/chat", map[string]any{"user_id": user.ID, "message": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "empty")

	s.responder.err = &ai.ProviderError{StatusCode: http.StatusTooManyRequests, Err: errors.New("rate limited")}
	rec = s.do(t, http.MethodPost, "/api/chat", map[string]any{"user_id": user.ID, "message": "hello"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "rate limited")

	var stored []model.Message
	require.NoError(t, s.db.Find(&stored).Error)
	require.Len(t, stored, 1)
	assert.Equal(t, model.SenderUser, stored[0].Sender)
}

func TestLookupErrors(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/user/99", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/user/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/session/99/messages?user_id=1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/session/1/messages?user_id=1&limit=x", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/session", map[string]any{"user_id": 99}).Code)
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	user, err := s.services.Users.Register(ctx, appsvc.RegisterInput{Name: "Root"})
	require.NoError(t, err)
	_, err = s.services.Admin.CreateAdmin(ctx, appsvc.CreateAdminInput{UserID: user.ID, Role: model.AdminRoleOwner, Password: "password123"})
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/api/v1/admin/login", map[string]any{"user_id": user.ID, "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/admin/login", map[string]any{"user_id": user.ID, "password": "password123"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[map[string]string](t, rec)
	assert.Equal(t, model.AdminRoleOwner, login["role"])

	path := fmt.Sprintf("/api/v1/admin/users/%d", user.ID)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, path, nil).Code)

	rec = s.do(t, http.MethodGet, path, nil, "Authorization", "Bearer "+login["token"])
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	detail := decode[map[string]any](t, rec)
	assert.Equal(t, "Root", detail["user"].(map[string]any)["first_name"])
	subscriptions := detail["subscriptions"].([]any)
	require.Len(t, subscriptions, 1)
	assert.Equal(t, "free", subscriptions[0].(map[string]any)["plan_name"])

	chat, err := s.services.Chat.Chat(ctx, appsvc.ChatInput{UserID: user.ID, Message: "hello"})
	require.NoError(t, err)

	transcript := fmt.Sprintf("/api/v1/admin/sessions/%d/messages", chat.SessionID)
	rec = s.do(t, http.MethodGet, transcript, nil, "Authorization", "Bearer "+login["token"])
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	rec = s.do(t, http.MethodGet, path, nil, "Authorization", "Bearer "+login["token"])
	detail = decode[map[string]any](t, rec)
	usage := detail["usage"].([]any)
	require.Len(t, usage, 1)
	assert.EqualValues(t, 11, usage[0].(map[string]any)["tokens_used"])
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, true, deps["mysql"].(map[string]any)["ok"])
	assert.Equal(t, "disabled", deps["redis"].(map[string]any)["message"])
}

func TestSessionTranscriptIsOwnerScoped(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	alice, err := s.services.Users.Register(ctx, appsvc.RegisterInput{Name: "Alice"})
	require.NoError(t, err)
	bob, err := s.services.Users.Register(ctx, appsvc.RegisterInput{Name: "Bob"})
	require.NoError(t, err)
	result, err := s.services.Chat.Chat(ctx, appsvc.ChatInput{UserID: alice.ID, Message: "my secret trauma"})
	require.NoError(t, err)

	path := fmt.Sprintf("/api/session/%d/messages", result.SessionID)

	rec := s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	rec = s.do(t, http.MethodGet, fmt.Sprintf("%s?user_id=%d", path, bob.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")

	rec = s.do(t, http.MethodGet, fmt.Sprintf("%s?user_id=%d", path, alice.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, fmt.Sprintf("/api/admin/sessions/%d/messages", result.SessionID), nil).Code)
}
