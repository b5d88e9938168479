package profile

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/WellingtonDevBR/immigru-app/internal/journey"
	"github.com/WellingtonDevBR/immigru-app/internal/users"
)

func TestProcessOnboardingStepRejectsUnknownStep(t *testing.T) {
	service := mustProfileService(t, openTestDatabase(t))

	_, err := service.ProcessOnboardingStep(context.Background(), "user-1", "favoriteColor", json.RawMessage(`{}`))
	if !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("expected ErrUnknownStep, got %v", err)
	}
}

func TestProcessBirthCountryPinsBirthStep(t *testing.T) {
	db := openTestDatabase(t)
	service := mustProfileService(t, db)
	seedCountry(t, db, "Brazil", "BR")

	result, err := service.ProcessOnboardingStep(context.Background(), "user-1", StepBirthCountry,
		json.RawMessage(`{"birthCountry": "Brazil"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, ok := result.(map[string]any)
	if !ok || data["originCountry"] != "Brazil" {
		t.Fatalf("unexpected step result: %+v", result)
	}

	stored, err := service.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.OriginCountry != "Brazil" {
		t.Fatalf("expected origin country persisted, got %q", stored.OriginCountry)
	}

	var steps []journey.MigrationStep
	if err := db.Where("user_id = ?", "user-1").Find(&steps).Error; err != nil {
		t.Fatalf("failed to load steps: %v", err)
	}
	if len(steps) != 1 || steps[0].Kind != journey.StepKindBirth {
		t.Fatalf("expected one birth step, got %+v", steps)
	}
}

func TestProcessBirthCountryRequiresValue(t *testing.T) {
	service := mustProfileService(t, openTestDatabase(t))

	_, err := service.ProcessOnboardingStep(context.Background(), "user-1", StepBirthCountry, json.RawMessage(`{}`))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestProcessCurrentStatusValidatesEnum(t *testing.T) {
	service := mustProfileService(t, openTestDatabase(t))

	if _, err := service.ProcessOnboardingStep(context.Background(), "user-1", StepCurrentStatus,
		json.RawMessage(`{"currentStatus": "teleporting"}`)); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	if _, err := service.ProcessOnboardingStep(context.Background(), "user-1", StepCurrentStatus,
		json.RawMessage(`{"currentStatus": "planning"}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := service.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.MigrationStage != "planning" {
		t.Fatalf("expected migration stage persisted, got %q", stored.MigrationStage)
	}
}

func TestProcessMigrationJourneyReconcilesSteps(t *testing.T) {
	db := openTestDatabase(t)
	service := mustProfileService(t, db)
	country := seedCountry(t, db, "Canada", "CA")

	payload := json.RawMessage(`{"migrationSteps": [{"countryId": ` + jsonNumber(country.ID) + `, "isTargetDestination": true}]}`)
	result, err := service.ProcessOnboardingStep(context.Background(), "user-1", StepMigrationJourney, payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	results, ok := result.([]journey.StepResult)
	if !ok || len(results) != 1 {
		t.Fatalf("unexpected result shape: %+v", result)
	}
	if results[0].Step == nil || !results[0].Step.IsTarget {
		t.Fatalf("expected target step persisted, got %+v", results[0])
	}
}

func TestProcessLanguagesAcceptsObjectEntries(t *testing.T) {
	db := openTestDatabase(t)
	service := mustProfileService(t, db)
	english := seedLanguage(t, db, "en", "English")

	payload := json.RawMessage(`{"languages": [{"id": ` + jsonNumber(english.ID) + `}]}`)
	if _, err := service.ProcessOnboardingStep(context.Background(), "user-1", StepLanguages, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	languages, err := service.Languages(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(languages) != 1 || languages[0].Code != "en" {
		t.Fatalf("expected English selected, got %+v", languages)
	}
}

func TestProcessCompletedMarksAccountAndProfile(t *testing.T) {
	db := openTestDatabase(t)
	service := mustProfileService(t, db)
	if _, err := service.users.EnsureUser(context.Background(), "user-1", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := service.ProcessOnboardingStep(context.Background(), "user-1", StepCompleted, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, ok := result.(map[string]any)
	if !ok || data["hasCompletedOnboarding"] != true {
		t.Fatalf("unexpected completion result: %+v", result)
	}

	stored, err := service.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !stored.IsOnboardingCompleted {
		t.Fatalf("expected profile onboarding flag to be set")
	}

	var account users.User
	if err := db.Where("id = ?", "user-1").Take(&account).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	if !account.HasCompletedOnboarding {
		t.Fatalf("expected account onboarding flag to be set")
	}

	status, err := service.CheckOnboardingStatus(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !status.Completed {
		t.Fatalf("expected status check to report completion")
	}
}

func TestDecodeIDListAcceptsMixedShapes(t *testing.T) {
	ids, err := DecodeIDList(json.RawMessage(`[1, "2", {"id": 3}, {"id": "4"}, "junk"]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 4 {
		t.Fatalf("expected 4 decoded ids, got %v", ids)
	}
	for index, want := range []int64{1, 2, 3, 4} {
		if ids[index] != want {
			t.Fatalf("unexpected id at %d: got %d, want %d", index, ids[index], want)
		}
	}
}

func jsonNumber(value int64) string {
	return strconv.FormatInt(value, 10)
}
