// Package testutil provides throwaway databases for tests.
package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"gin-gorm-accounts/internal/core/database"
	"gin-gorm-accounts/internal/domain"
)

// NewSQLite opens a migrated in-memory SQLite database that lives for the test.
func NewSQLite(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      "file::memory:?_pragma=case_sensitive_like(1)",
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := db.WithContext(context.Background()).AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
