package users

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "users.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func mustService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	service, err := NewService(ServiceConfig{
		Database: db,
		Clock:    func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}
	return service
}

func TestEnsureUserCreatesOnFirstSight(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db)

	user, err := service.EnsureUser(context.Background(), "user-1", "person@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != "user-1" || user.Email != "person@example.com" {
		t.Fatalf("unexpected created user: %+v", user)
	}

	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user row, got %d", count)
	}
}

func TestEnsureUserRefreshesEmailAndIsIdempotent(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db)

	if _, err := service.EnsureUser(context.Background(), "user-1", "old@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	user, err := service.EnsureUser(context.Background(), "user-1", "new@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "new@example.com" {
		t.Fatalf("expected email refresh, got %q", user.Email)
	}

	var count int64
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected no duplicate rows, got %d", count)
	}
}

func TestEnsureUserLogsFailedRefresh(t *testing.T) {
	db := openTestDatabase(t)
	core, recorded := observer.New(zapcore.WarnLevel)
	service, err := NewService(ServiceConfig{
		Database: db,
		Clock:    func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
		Logger:   zap.New(core),
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	if _, err := service.EnsureUser(context.Background(), "user-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := db.Exec("ALTER TABLE users DROP COLUMN last_seen_at").Error; err != nil {
		t.Fatalf("failed to drop column: %v", err)
	}

	user, err := service.EnsureUser(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("expected refresh failure to be non-fatal, got %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if entries := recorded.FilterMessage("user refresh failed").Len(); entries != 1 {
		t.Fatalf("expected one refresh warning, got %d", entries)
	}
}

func TestEnsureUserRejectsEmptyID(t *testing.T) {
	service := mustService(t, openTestDatabase(t))
	if _, err := service.EnsureUser(context.Background(), "   ", ""); !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
}

func TestMarkOnboardingCompleted(t *testing.T) {
	db := openTestDatabase(t)
	service := mustService(t, db)

	if _, err := service.EnsureUser(context.Background(), "user-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := service.MarkOnboardingCompleted(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stored User
	if err := db.Where("id = ?", "user-1").Take(&stored).Error; err != nil {
		t.Fatalf("failed to reload user: %v", err)
	}
	if !stored.HasCompletedOnboarding {
		t.Fatalf("expected onboarding flag to be set")
	}
}
