package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/WellingtonDevBR/immigru-app/internal/journey"
)

// Onboarding step identifiers accepted by ProcessOnboardingStep.
const (
	StepBirthCountry       = "birthCountry"
	StepCurrentStatus      = "currentStatus"
	StepMigrationJourney   = "migrationJourney"
	StepProfession         = "profession"
	StepLanguages          = "languages"
	StepInterests          = "interests"
	StepProfileBasicInfo   = "profileBasicInfo"
	StepProfileDisplayName = "profileDisplayName"
	StepProfileBio         = "profileBio"
	StepProfileLocation    = "profileLocation"
	StepProfilePrivacy     = "profilePrivacy"
	StepCompleted          = "completed"
)

var (
	// ErrValidation wraps client-input failures so transports can map them to 400.
	ErrValidation = errors.New("profile: validation failed")
	// ErrUnknownStep indicates an onboarding step name outside the known set.
	ErrUnknownStep = fmt.Errorf("%w: unknown onboarding step", ErrValidation)
)

var migrationStages = map[string]struct{}{
	"planning":  {},
	"gathering": {},
	"moved":     {},
	"exploring": {},
	"permanent": {},
}

// GroveJoiner records community-group selections made during onboarding.
type GroveJoiner interface {
	JoinGroves(ctx context.Context, userID string, groveIDs []string) error
}

// SetGroveJoiner wires the optional community-group collaborator.
func (s *Service) SetGroveJoiner(joiner GroveJoiner) {
	s.groves = joiner
}

// ProcessOnboardingStep validates and persists the payload for one onboarding
// step, returning the step's response data.
func (s *Service) ProcessOnboardingStep(ctx context.Context, userID, step string, data json.RawMessage) (any, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if _, err := s.CreateProfileIfAbsent(ctx, userID); err != nil {
		return nil, err
	}

	switch step {
	case StepBirthCountry:
		return s.processBirthCountry(ctx, userID, data)
	case StepCurrentStatus:
		return s.processCurrentStatus(ctx, userID, data)
	case StepMigrationJourney:
		return s.processMigrationJourney(ctx, userID, data)
	case StepProfession:
		return s.processProfession(ctx, userID, data)
	case StepLanguages:
		return s.processLanguageSelection(ctx, userID, data)
	case StepInterests:
		return s.processInterestSelection(ctx, userID, data)
	case StepProfileBasicInfo:
		return s.processBasicInfo(ctx, userID, data)
	case StepProfileDisplayName:
		return s.processDisplayName(ctx, userID, data)
	case StepProfileBio:
		return s.processBio(ctx, userID, data)
	case StepProfileLocation:
		return s.processLocation(ctx, userID, data)
	case StepProfilePrivacy:
		return s.processPrivacy(ctx, userID, data)
	case StepCompleted:
		return s.processCompleted(ctx, userID, data)
	default:
		return nil, ErrUnknownStep
	}
}

func (s *Service) processBirthCountry(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		BirthCountry string `json:"birthCountry"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.BirthCountry == "" {
		return nil, fmt.Errorf("%w: birth country is required", ErrValidation)
	}

	countryName := payload.BirthCountry
	country, err := s.catalog.FindCountry(ctx, payload.BirthCountry)
	if err != nil {
		return nil, err
	}
	if country != nil {
		countryName = country.Name
	}

	if _, err := s.UpdateProfile(ctx, userID, ProfileUpdate{OriginCountry: &countryName}); err != nil {
		return nil, err
	}

	if country != nil && s.journey != nil {
		if _, err := s.journey.PinBirthStep(ctx, userID, country.ID); err != nil {
			return nil, err
		}
	} else {
		s.logger.Warn("birth country not found in catalog, skipping step pin",
			zap.String("user_id", userID),
			zap.String("birth_country", payload.BirthCountry))
	}

	return map[string]any{"originCountry": countryName}, nil
}

func (s *Service) processCurrentStatus(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		CurrentStatus string `json:"currentStatus"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.CurrentStatus == "" {
		return nil, fmt.Errorf("%w: current status is required", ErrValidation)
	}
	if _, ok := migrationStages[payload.CurrentStatus]; !ok {
		return nil, fmt.Errorf("%w: invalid current status %q", ErrValidation, payload.CurrentStatus)
	}
	if _, err := s.UpdateProfile(ctx, userID, ProfileUpdate{MigrationStage: &payload.CurrentStatus}); err != nil {
		return nil, err
	}
	return map[string]any{"currentStatus": payload.CurrentStatus}, nil
}

func (s *Service) processMigrationJourney(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		MigrationSteps json.RawMessage `json:"migrationSteps"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.MigrationSteps) == 0 {
		return nil, fmt.Errorf("%w: migration steps must be an array", ErrValidation)
	}
	changes, err := journey.DecodeStepChanges(payload.MigrationSteps)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if len(changes) == 0 {
		return map[string]any{"message": "no migration steps to process"}, nil
	}
	results, err := s.journey.ReconcileSteps(ctx, userID, changes)
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) processProfession(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		Profession string `json:"profession"`
		Industry   string `json:"industry"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.Profession == "" {
		return nil, fmt.Errorf("%w: profession is required", ErrValidation)
	}
	update := ProfileUpdate{Profession: &payload.Profession}
	if payload.Industry != "" {
		update.Industry = &payload.Industry
	}
	if _, err := s.UpdateProfile(ctx, userID, update); err != nil {
		return nil, err
	}
	return map[string]any{"profession": payload.Profession, "industry": payload.Industry}, nil
}

func (s *Service) processLanguageSelection(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		Languages json.RawMessage `json:"languages"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: languages are required", ErrValidation)
	}
	ids, err := DecodeIDList(payload.Languages)
	if err != nil || len(ids) == 0 {
		return nil, fmt.Errorf("%w: languages are required", ErrValidation)
	}
	if err := s.ReplaceLanguages(ctx, userID, ids); err != nil {
		return nil, err
	}
	return map[string]any{"languages": ids}, nil
}

func (s *Service) processInterestSelection(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		Interests json.RawMessage `json:"interests"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: interests are required", ErrValidation)
	}
	ids, err := DecodeIDList(payload.Interests)
	if err != nil || len(ids) == 0 {
		return nil, fmt.Errorf("%w: interests are required", ErrValidation)
	}
	if err := s.ReplaceInterests(ctx, userID, ids); err != nil {
		return nil, err
	}
	return map[string]any{"interests": ids}, nil
}

func (s *Service) processBasicInfo(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		FullName        string `json:"fullName"`
		ProfilePhotoURL string `json:"profilePhotoUrl"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.FullName == "" {
		return nil, fmt.Errorf("%w: full name is required", ErrValidation)
	}
	update := ProfileUpdate{FullName: &payload.FullName}
	if payload.ProfilePhotoURL != "" {
		update.AvatarURL = &payload.ProfilePhotoURL
	}
	if _, err := s.UpdateProfile(ctx, userID, update); err != nil {
		return nil, err
	}
	return map[string]any{"fullName": payload.FullName, "avatarUrl": payload.ProfilePhotoURL}, nil
}

func (s *Service) processDisplayName(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || payload.DisplayName == "" {
		return nil, fmt.Errorf("%w: display name is required", ErrValidation)
	}
	if _, err := s.UpdateProfile(ctx, userID, ProfileUpdate{DisplayName: &payload.DisplayName}); err != nil {
		return nil, err
	}
	return map[string]any{"displayName": payload.DisplayName}, nil
}

func (s *Service) processBio(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		Bio string `json:"bio"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed bio payload", ErrValidation)
	}
	updated, err := s.UpdateProfile(ctx, userID, ProfileUpdate{Bio: &payload.Bio})
	if err != nil {
		return nil, err
	}
	return map[string]any{"bio": updated.Bio}, nil
}

func (s *Service) processLocation(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		CurrentCity     string `json:"currentCity"`
		DestinationCity string `json:"destinationCity"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed location payload", ErrValidation)
	}
	if _, err := s.UpdateProfile(ctx, userID, ProfileUpdate{
		CurrentCity:     &payload.CurrentCity,
		DestinationCity: &payload.DestinationCity,
	}); err != nil {
		return nil, err
	}
	return map[string]any{"currentCity": payload.CurrentCity, "destinationCity": payload.DestinationCity}, nil
}

func (s *Service) processPrivacy(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	var payload struct {
		IsPrivate any `json:"isPrivate"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed privacy payload", ErrValidation)
	}
	isPrivate := journey.CoerceBool(payload.IsPrivate, false)
	if _, err := s.UpdateProfile(ctx, userID, ProfileUpdate{IsPrivate: &isPrivate}); err != nil {
		return nil, err
	}
	return map[string]any{"isPrivate": isPrivate}, nil
}

func (s *Service) processCompleted(ctx context.Context, userID string, data json.RawMessage) (any, error) {
	if s.users != nil {
		if err := s.users.MarkOnboardingCompleted(ctx, userID); err != nil {
			return nil, err
		}
	}
	err := s.db.WithContext(ctx).Model(&UserProfile{}).
		Where("user_id = ?", userID).
		Update("is_onboarding_completed", true).Error
	if err != nil {
		return nil, fmt.Errorf("profile: mark completed: %w", err)
	}

	if len(data) > 0 && s.groves != nil {
		var payload struct {
			ImmiGroveIDs []string `json:"immiGroveIds"`
		}
		if err := json.Unmarshal(data, &payload); err == nil && len(payload.ImmiGroveIDs) > 0 {
			if err := s.groves.JoinGroves(ctx, userID, payload.ImmiGroveIDs); err != nil {
				// Grove selection must not fail onboarding completion.
				s.logger.Warn("failed to save grove selections",
					zap.String("user_id", userID),
					zap.Error(err))
			}
		}
	}

	return map[string]any{"hasCompletedOnboarding": true}, nil
}

// OnboardingStatus reports onboarding completion alongside the profile row.
type OnboardingStatus struct {
	Completed bool         `json:"completed"`
	Profile   *UserProfile `json:"profile,omitempty"`
}

// CheckOnboardingStatus reports whether the user finished onboarding.
func (s *Service) CheckOnboardingStatus(ctx context.Context, userID string) (OnboardingStatus, error) {
	stored, err := s.GetProfile(ctx, userID)
	if err != nil {
		return OnboardingStatus{}, err
	}
	if stored == nil {
		return OnboardingStatus{Completed: false}, nil
	}
	return OnboardingStatus{Completed: stored.IsOnboardingCompleted, Profile: stored}, nil
}

// GetOnboardingStepData returns the persisted data backing one onboarding step.
func (s *Service) GetOnboardingStepData(ctx context.Context, userID, step string) (any, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	switch step {
	case StepBirthCountry:
		stored, err := s.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		origin := ""
		if stored != nil {
			origin = stored.OriginCountry
		}
		return map[string]any{"birthCountry": origin}, nil
	case StepCurrentStatus:
		stored, err := s.GetProfile(ctx, userID)
		if err != nil {
			return nil, err
		}
		stage := ""
		if stored != nil {
			stage = stored.MigrationStage
		}
		return map[string]any{"currentStatus": stage}, nil
	case StepMigrationJourney:
		steps, err := s.journey.ListSteps(ctx, userID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"migrationSteps": steps}, nil
	case StepLanguages:
		languages, err := s.Languages(ctx, userID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"languages": languages}, nil
	case StepInterests:
		interests, err := s.Interests(ctx, userID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"interests": interests}, nil
	default:
		return nil, ErrUnknownStep
	}
}

// DecodeIDList accepts either bare identifiers or objects carrying an id field.
func DecodeIDList(raw json.RawMessage) ([]int64, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("profile: empty id list")
	}
	var values []any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, fmt.Errorf("profile: id list must be an array: %w", err)
	}
	ids := make([]int64, 0, len(values))
	for _, value := range values {
		if object, ok := value.(map[string]any); ok {
			value = object["id"]
		}
		if id, ok := journey.CoerceID(value); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
