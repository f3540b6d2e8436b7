// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"neuromentor/internal/model"
)

// NewDB opens a private in-memory SQLite database with the full schema migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to a memory database sees its own copy unless shared
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

// CountMessages returns how many messages are stored for a session.
func CountMessages(t testing.TB, db *gorm.DB, sessionID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&model.Message{}).Where("session_id = ?", sessionID).Count(&n).Error)
	return n
}
