package journey

import (
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/WellingtonDevBR/immigru-app/internal/catalog"
)

var testClockTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	databasePath := filepath.Join(t.TempDir(), "journey.db")
	db, err := gorm.Open(sqlite.Open(databasePath), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&MigrationStep{}, &catalog.Country{}, &catalog.Visa{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	return db
}

func mustService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	service, err := NewService(ServiceConfig{
		Database: db,
		Clock:    func() time.Time { return testClockTime },
	})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
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

func seedVisa(t *testing.T, db *gorm.DB, countryID int64, name string) catalog.Visa {
	t.Helper()
	visa := catalog.Visa{CountryID: countryID, VisaName: name, IsPublic: true}
	if err := db.Create(&visa).Error; err != nil {
		t.Fatalf("failed to seed visa: %v", err)
	}
	return visa
}

func seedStep(t *testing.T, db *gorm.DB, step MigrationStep) MigrationStep {
	t.Helper()
	if step.Kind == "" {
		step.Kind = StepKindWaypoint
	}
	if err := db.Create(&step).Error; err != nil {
		t.Fatalf("failed to seed step: %v", err)
	}
	return step
}

func loadSteps(t *testing.T, db *gorm.DB, userID string) []MigrationStep {
	t.Helper()
	var steps []MigrationStep
	if err := db.Where("user_id = ?", userID).Order("position ASC").Find(&steps).Error; err != nil {
		t.Fatalf("failed to load steps: %v", err)
	}
	return steps
}

func timePointer(value time.Time) *time.Time {
	return &value
}
