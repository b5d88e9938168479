package profile

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/WellingtonDevBR/immigru-app/internal/catalog"
	"github.com/WellingtonDevBR/immigru-app/internal/journey"
	"github.com/WellingtonDevBR/immigru-app/internal/users"
)

var testClockTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type sequenceIDProvider struct {
	next int
}

func (p *sequenceIDProvider) NewID() (string, error) {
	p.next++
	return fmt.Sprintf("id-%04d", p.next), nil
}

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "profile.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&users.User{},
		&catalog.Country{},
		&catalog.Visa{},
		&catalog.Language{},
		&catalog.Interest{},
		&journey.MigrationStep{},
		&UserProfile{},
		&UserLanguage{},
		&UserInterest{},
	)
	if err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func mustProfileService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	clock := func() time.Time { return testClockTime }

	journeyService, err := journey.NewService(journey.ServiceConfig{Database: db, Clock: clock})
	if err != nil {
		t.Fatalf("unexpected journey service error: %v", err)
	}
	usersService, err := users.NewService(users.ServiceConfig{Database: db, Clock: clock})
	if err != nil {
		t.Fatalf("unexpected users service error: %v", err)
	}
	catalogService, err := catalog.NewService(catalog.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("unexpected catalog service error: %v", err)
	}

	service, err := NewService(ServiceConfig{
		Database:   db,
		Clock:      clock,
		IDProvider: &sequenceIDProvider{},
		Journey:    journeyService,
		Users:      usersService,
		Catalog:    catalogService,
	})
	if err != nil {
		t.Fatalf("unexpected profile service error: %v", err)
	}
	return service
}

func seedCountry(t *testing.T, db *gorm.DB, name, iso string) catalog.Country {
	t.Helper()
	country := catalog.Country{Name: name, IsoCode: iso, IsActive: true}
	if err := db.Create(&country).Error; err != nil {
		t.Fatalf("failed to seed country: %v", err)
	}
	return country
}

func seedLanguage(t *testing.T, db *gorm.DB, code, name string) catalog.Language {
	t.Helper()
	language := catalog.Language{Code: code, Name: name, IsActive: true}
	if err := db.Create(&language).Error; err != nil {
		t.Fatalf("failed to seed language: %v", err)
	}
	return language
}

func seedInterest(t *testing.T, db *gorm.DB, name, category string) catalog.Interest {
	t.Helper()
	interest := catalog.Interest{Name: name, Category: category, IsActive: true}
	if err := db.Create(&interest).Error; err != nil {
		t.Fatalf("failed to seed interest: %v", err)
	}
	return interest
}

func stringPointer(value string) *string {
	return &value
}
