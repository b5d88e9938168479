package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WellingtonDevBR/immigru-app/internal/catalog"
	"github.com/WellingtonDevBR/immigru-app/internal/journey"
	"github.com/WellingtonDevBR/immigru-app/internal/users"
)

var (
	errMissingDatabase   = errors.New("profile: database handle is required")
	errMissingIDProvider = errors.New("profile: id provider is required")
	// ErrMissingUserID indicates an empty acting-user identifier.
	ErrMissingUserID = errors.New("profile: user identifier is required")
)

// ServiceConfig describes the dependencies of the profile service.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
	Journey    *journey.Service
	Users      *users.Service
	Catalog    *catalog.Service
}

// Service manages profile rows and the user's language/interest selections.
type Service struct {
	db      *gorm.DB
	clock   func() time.Time
	ids     IDProvider
	logger  *zap.Logger
	journey *journey.Service
	users   *users.Service
	catalog *catalog.Service
	groves  GroveJoiner
}

// NewService constructs the profile service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.IDProvider == nil {
		return nil, errMissingIDProvider
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:      cfg.Database,
		clock:   clock,
		ids:     cfg.IDProvider,
		logger:  logger,
		journey: cfg.Journey,
		users:   cfg.Users,
		catalog: cfg.Catalog,
	}, nil
}

// GetProfile returns the profile row for the user, or nil when absent.
func (s *Service) GetProfile(ctx context.Context, userID string) (*UserProfile, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	var stored UserProfile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile: get: %w", err)
	}
	return &stored, nil
}

// CreateProfileIfAbsent returns the existing profile or inserts a fresh one
// with onboarding not completed. Safe to call repeatedly.
func (s *Service) CreateProfileIfAbsent(ctx context.Context, userID string) (*UserProfile, error) {
	existing, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	id, err := s.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("profile: id generation: %w", err)
	}
	created := UserProfile{
		ID:                    id,
		UserID:                userID,
		IsOnboardingCompleted: false,
	}
	if err := s.db.WithContext(ctx).Create(&created).Error; err != nil {
		// A concurrent create may have won the race; re-read before failing.
		if refetched, refetchErr := s.GetProfile(ctx, userID); refetchErr == nil && refetched != nil {
			return refetched, nil
		}
		return nil, fmt.Errorf("profile: create: %w", err)
	}
	return &created, nil
}

// UpdateProfile applies a partial field merge. Free-text fields are sanitized
// before persisting.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*UserProfile, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if _, err := s.CreateProfileIfAbsent(ctx, userID); err != nil {
		return nil, err
	}

	columns := map[string]interface{}{}
	assign := func(column string, value *string) {
		if value != nil {
			columns[column] = *value
		}
	}
	assign("full_name", update.FullName)
	assign("display_name", update.DisplayName)
	assign("avatar_url", update.AvatarURL)
	assign("current_city", update.CurrentCity)
	assign("destination_city", update.DestinationCity)
	assign("origin_country", update.OriginCountry)
	assign("migration_stage", update.MigrationStage)
	assign("profession", update.Profession)
	assign("industry", update.Industry)
	if update.Bio != nil {
		columns["bio"] = journey.SanitizeNotes(*update.Bio)
	}
	if update.IsPrivate != nil {
		columns["is_private"] = *update.IsPrivate
	}

	if len(columns) > 0 {
		err := s.db.WithContext(ctx).Model(&UserProfile{}).
			Where("user_id = ?", userID).
			Updates(columns).Error
		if err != nil {
			return nil, fmt.Errorf("profile: update: %w", err)
		}
	}
	return s.GetProfile(ctx, userID)
}

// ReplaceLanguages swaps the user's language selection wholesale: existing
// rows are removed and the submitted set inserted, in one transaction.
func (s *Service) ReplaceLanguages(ctx context.Context, userID string, languageIDs []int64) error {
	if userID == "" {
		return ErrMissingUserID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&UserLanguage{}).Error; err != nil {
			return fmt.Errorf("profile: delete languages: %w", err)
		}
		if len(languageIDs) == 0 {
			return nil
		}
		rows := make([]UserLanguage, 0, len(languageIDs))
		for _, languageID := range languageIDs {
			rows = append(rows, UserLanguage{UserID: userID, LanguageID: languageID})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("profile: insert languages: %w", err)
		}
		return nil
	})
}

// ReplaceInterests swaps the user's interest selection wholesale.
func (s *Service) ReplaceInterests(ctx context.Context, userID string, interestIDs []int64) error {
	if userID == "" {
		return ErrMissingUserID
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&UserInterest{}).Error; err != nil {
			return fmt.Errorf("profile: delete interests: %w", err)
		}
		if len(interestIDs) == 0 {
			return nil
		}
		rows := make([]UserInterest, 0, len(interestIDs))
		for _, interestID := range interestIDs {
			rows = append(rows, UserInterest{UserID: userID, InterestID: interestID})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("profile: insert interests: %w", err)
		}
		return nil
	})
}

// Languages returns the catalog entries the user has selected.
func (s *Service) Languages(ctx context.Context, userID string) ([]catalog.Language, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	var languages []catalog.Language
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&UserLanguage{}).Select("language_id").Where("user_id = ?", userID)).
		Order("name ASC").
		Find(&languages).Error
	if err != nil {
		return nil, fmt.Errorf("profile: list languages: %w", err)
	}
	return languages, nil
}

// Interests returns the catalog entries the user has selected.
func (s *Service) Interests(ctx context.Context, userID string) ([]catalog.Interest, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	var interests []catalog.Interest
	err := s.db.WithContext(ctx).
		Where("id IN (?)", s.db.Model(&UserInterest{}).Select("interest_id").Where("user_id = ?", userID)).
		Order("name ASC").
		Find(&interests).Error
	if err != nil {
		return nil, fmt.Errorf("profile: list interests: %w", err)
	}
	return interests, nil
}

// Bundle aggregates the profile, migration steps, and selections for the
// profile GET endpoint.
type Bundle struct {
	Profile        *UserProfile       `json:"profile"`
	MigrationSteps []journey.StepView `json:"migrationSteps"`
	Languages      []catalog.Language `json:"languages"`
	Interests      []catalog.Interest `json:"interests"`
}

// GetBundle returns the full profile view, creating the profile row on first
// access.
func (s *Service) GetBundle(ctx context.Context, userID string) (Bundle, error) {
	stored, err := s.CreateProfileIfAbsent(ctx, userID)
	if err != nil {
		return Bundle{}, err
	}
	steps, err := s.journey.ListSteps(ctx, userID)
	if err != nil {
		return Bundle{}, err
	}
	languages, err := s.Languages(ctx, userID)
	if err != nil {
		return Bundle{}, err
	}
	interests, err := s.Interests(ctx, userID)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Profile:        stored,
		MigrationSteps: steps,
		Languages:      languages,
		Interests:      interests,
	}, nil
}
