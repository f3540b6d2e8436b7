package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuromentor/internal/model"
	"neuromentor/internal/testutil"
)

func TestRecordAccumulatesPerDay(t *testing.T) {
	db := testutil.NewDB(t)
	user := mustUser(t, db, "Ivan")
	repo := NewUsageLogRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.Record(ctx, model.UsageEvent{UserID: user.ID, Tokens: 120, NewSession: true, OccurredAt: day}))
	require.NoError(t, repo.Record(ctx, model.UsageEvent{UserID: user.ID, Tokens: 80, OccurredAt: day.Add(3 * time.Hour)}))
	require.NoError(t, repo.Record(ctx, model.UsageEvent{UserID: user.ID, Tokens: 5, OccurredAt: day.Add(24 * time.Hour)}))

	logs, err := repo.ListByUserID(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	latest, first := logs[0], logs[1]
	assert.Equal(t, 1, latest.RequestsCount)
	assert.Equal(t, 5, latest.TokensUsed)
	assert.Equal(t, 0, latest.SessionCount)

	assert.Equal(t, 2, first.RequestsCount)
	assert.Equal(t, 200, first.TokensUsed)
	assert.Equal(t, 1, first.SessionCount)
	assert.True(t, first.Date.Equal(model.UsageDay(day)))
}
