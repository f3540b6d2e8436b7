package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuromentor/internal/model"
	"neuromentor/internal/testutil"
)

func TestAdminRepository(t *testing.T) {
	db := testutil.NewDB(t)
	user := mustUser(t, db, "Root")
	repo := NewAdminRepository(db)
	ctx := context.Background()

	missing, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.Create(ctx, &model.Admin{UserID: user.ID, Role: model.AdminRoleOwner, PasswordHash: "hash"}))

	admin, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, model.AdminRoleOwner, admin.Role)

	err = repo.Create(ctx, &model.Admin{UserID: user.ID, Role: model.AdminRoleAdmin, PasswordHash: "other"})
	assert.Error(t, err)
}

func TestAIRequestRepository(t *testing.T) {
	db := testutil.NewDB(t)
	session := mustSession(t, db)
	msg, err := NewMessageRepository(db).Append(context.Background(), session.ID, model.SenderUser, "hi", 0)
	require.NoError(t, err)

	repo := NewAIRequestRepository(db)
	status := 200
	require.NoError(t, repo.Create(context.Background(), &model.AIRequest{
		MessageID:      msg.ID,
		RequestPayload: []byte(`[{"role":"user","content":"hi"}]`),
		StatusCode:     &status,
	}))

	records, err := repo.ListByMessageID(context.Background(), msg.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.JSONEq(t, `[{"role":"user","content":"hi"}]`, string(records[0].RequestPayload))
	assert.Equal(t, 200, *records[0].StatusCode)
}
