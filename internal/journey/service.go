package journey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/WellingtonDevBR/immigru-app/internal/catalog"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	errMissingUserID   = errors.New("user identifier is required")
	noOpLogger         = zap.NewNop()
)

// ServiceError carries a stable operation.reason code alongside the cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the stable error code for transport mapping.
func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew = "journey.service.new"
	opReconcile  = "journey.reconcile"
	opListSteps  = "journey.list_steps"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// futureArrivalBuffer absorbs timezone skew before a future arrival warning fires.
const futureArrivalBuffer = 24 * time.Hour

// ServiceConfig describes the dependencies for the step reconciler.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service reconciles client-submitted step changes against persisted state.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService constructs the reconciler service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, clock: clock, logger: logger}, nil
}

// ReconcileSteps merges the submitted change requests against the user's
// persisted steps inside one transaction: a single read of existing state,
// per-request processing in list order, then a reorder pass that persists
// only rows whose position changed. The first failing request aborts and
// rolls back the whole batch.
func (s *Service) ReconcileSteps(ctx context.Context, userID string, changes []StepChange) ([]StepResult, error) {
	if s.db == nil {
		return nil, newServiceError(opReconcile, "missing_database", errMissingDatabase)
	}
	if userID == "" {
		return nil, newServiceError(opReconcile, "missing_user_id", errMissingUserID)
	}

	results := make([]StepResult, 0, len(changes))
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []*MigrationStep
		if err := tx.Where("user_id = ?", userID).Order("position ASC").Find(&existing).Error; err != nil {
			s.logError(opReconcile, "step_select_failed", err, zap.String("user_id", userID))
			return newServiceError(opReconcile, "step_select_failed", err)
		}

		for _, change := range changes {
			var result StepResult
			var err error
			if change.Delete {
				result, existing, err = s.applyDelete(tx, existing, userID, change)
			} else {
				result, existing, err = s.applyUpsert(tx, existing, userID, change)
			}
			if err != nil {
				return err
			}
			results = append(results, result)
		}

		for _, step := range Reorder(existing) {
			err := tx.Model(&MigrationStep{}).
				Where("id = ?", step.ID).
				Updates(map[string]interface{}{
					"position":   step.Position,
					"is_current": step.IsCurrent,
					"is_target":  step.IsTarget,
				}).Error
			if err != nil {
				s.logError(opReconcile, "reorder_update_failed", err,
					zap.String("user_id", userID),
					zap.Int64("step_id", step.ID))
				return newServiceError(opReconcile, "reorder_update_failed", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return results, nil
}

func (s *Service) applyDelete(tx *gorm.DB, existing []*MigrationStep, userID string, change StepChange) (StepResult, []*MigrationStep, error) {
	if change.ID == 0 {
		s.logError(opReconcile, "missing_step_id", ErrDeleteWithoutID, zap.String("user_id", userID))
		return StepResult{}, existing, newServiceError(opReconcile, "missing_step_id", ErrDeleteWithoutID)
	}

	for index, step := range existing {
		if step.ID != change.ID {
			continue
		}
		if step.Kind == StepKindBirth {
			// The origin record is pinned; report it untouched.
			return StepResult{ID: change.ID, Deleted: false}, existing, nil
		}
		if err := tx.Where("id = ? AND user_id = ?", change.ID, userID).Delete(&MigrationStep{}).Error; err != nil {
			s.logError(opReconcile, "step_delete_failed", err,
				zap.String("user_id", userID),
				zap.Int64("step_id", change.ID))
			return StepResult{}, existing, newServiceError(opReconcile, "step_delete_failed", err)
		}
		remaining := append(existing[:index:index], existing[index+1:]...)
		return StepResult{ID: change.ID, Deleted: true}, remaining, nil
	}

	// Unknown id: nothing to remove, deletion is idempotent.
	return StepResult{ID: change.ID, Deleted: true}, existing, nil
}

func (s *Service) applyUpsert(tx *gorm.DB, existing []*MigrationStep, userID string, change StepChange) (StepResult, []*MigrationStep, error) {
	if change.CountryID == 0 {
		s.logError(opReconcile, "country_required", ErrCountryRequired, zap.String("user_id", userID))
		return StepResult{}, existing, newServiceError(opReconcile, "country_required", ErrCountryRequired)
	}

	arrivedAt, err := ParseDate(change.ArrivedDate)
	if err != nil {
		return StepResult{}, existing, newServiceError(opReconcile, "invalid_arrived_date", err)
	}
	leftAt, err := ParseDate(change.LeftDate)
	if err != nil {
		return StepResult{}, existing, newServiceError(opReconcile, "invalid_left_date", err)
	}
	s.warnSuspectDates(userID, arrivedAt, leftAt)

	matched := matchStep(existing, change)

	visaID, err := s.resolveVisa(tx, change)
	if err != nil {
		return StepResult{}, existing, err
	}

	notes := SanitizeNotes(change.Notes)
	reason := ValidateReason(change.MigrationReason)

	if matched != nil {
		matched.CountryID = change.CountryID
		matched.VisaID = visaID
		matched.IsCurrent = change.IsCurrent
		matched.IsTarget = change.IsTarget
		matched.ArrivedAt = arrivedAt
		matched.LeftAt = leftAt
		matched.Notes = notes
		matched.MigrationReason = reason
		matched.WasSuccessful = change.WasSuccessful
		if err := tx.Save(matched).Error; err != nil {
			s.logError(opReconcile, "step_update_failed", err,
				zap.String("user_id", userID),
				zap.Int64("step_id", matched.ID))
			return StepResult{}, existing, newServiceError(opReconcile, "step_update_failed", err)
		}
		return StepResult{ID: matched.ID, Step: matched}, existing, nil
	}

	inserted := &MigrationStep{
		UserID:          userID,
		Kind:            StepKindWaypoint,
		CountryID:       change.CountryID,
		VisaID:          visaID,
		IsCurrent:       change.IsCurrent,
		IsTarget:        change.IsTarget,
		ArrivedAt:       arrivedAt,
		LeftAt:          leftAt,
		Notes:           notes,
		MigrationReason: reason,
		WasSuccessful:   change.WasSuccessful,
		Position:        maxPosition(existing) + 1,
	}
	if err := tx.Create(inserted).Error; err != nil {
		s.logError(opReconcile, "step_insert_failed", err, zap.String("user_id", userID))
		return StepResult{}, existing, newServiceError(opReconcile, "step_insert_failed", err)
	}
	return StepResult{ID: inserted.ID, Step: inserted}, append(existing, inserted), nil
}

// matchStep finds the persisted row a change request refers to: exact id
// match first, then (country, visa) within the user's rows, then the first
// row for the country.
func matchStep(existing []*MigrationStep, change StepChange) *MigrationStep {
	if change.ID != 0 {
		for _, step := range existing {
			if step.ID == change.ID {
				return step
			}
		}
	}
	var firstCountryMatch *MigrationStep
	for _, step := range existing {
		if step.CountryID != change.CountryID {
			continue
		}
		if firstCountryMatch == nil {
			firstCountryMatch = step
		}
		if change.VisaID != 0 && step.VisaID != nil && *step.VisaID == change.VisaID {
			return step
		}
	}
	if change.VisaID != 0 {
		return nil
	}
	return firstCountryMatch
}

// resolveVisa verifies a submitted visa id against the catalog, falling back
// to a name+country lookup. Lookup misses degrade to nil rather than failing
// the row.
func (s *Service) resolveVisa(tx *gorm.DB, change StepChange) (*int64, error) {
	if change.VisaID != 0 {
		var visa catalog.Visa
		err := tx.Where("id = ?", change.VisaID).Take(&visa).Error
		if err == nil {
			id := visa.ID
			return &id, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logError(opReconcile, "visa_lookup_failed", err, zap.Int64("visa_id", change.VisaID))
			return nil, newServiceError(opReconcile, "visa_lookup_failed", err)
		}
		s.logger.Warn("submitted visa id not found, clearing",
			zap.Int64("visa_id", change.VisaID))
	}

	if change.VisaName != "" && change.CountryID != 0 {
		var visa catalog.Visa
		err := tx.Where("visa_name = ? AND country_id = ?", change.VisaName, change.CountryID).Take(&visa).Error
		if err == nil {
			id := visa.ID
			return &id, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logError(opReconcile, "visa_name_lookup_failed", err, zap.String("visa_name", change.VisaName))
			return nil, newServiceError(opReconcile, "visa_name_lookup_failed", err)
		}
	}
	return nil, nil
}

func (s *Service) warnSuspectDates(userID string, arrivedAt, leftAt *time.Time) {
	if arrivedAt != nil && arrivedAt.After(s.clock().UTC().Add(futureArrivalBuffer)) {
		s.logger.Warn("arrival date is in the future",
			zap.String("user_id", userID),
			zap.Time("arrived_at", *arrivedAt))
	}
	if arrivedAt != nil && leftAt != nil && leftAt.Before(*arrivedAt) {
		s.logger.Warn("departure date precedes arrival date",
			zap.String("user_id", userID),
			zap.Time("arrived_at", *arrivedAt),
			zap.Time("left_at", *leftAt))
	}
}

func maxPosition(steps []*MigrationStep) int {
	max := 0
	for _, step := range steps {
		if step.Position > max {
			max = step.Position
		}
	}
	return max
}

// StepView is a step joined with its country and visa names for responses.
type StepView struct {
	MigrationStep
	CountryName string  `json:"countryName"`
	CountryISO  string  `json:"countryIsoCode"`
	VisaName    *string `json:"visaName"`
}

// ListSteps returns the user's steps in position order with catalog names attached.
func (s *Service) ListSteps(ctx context.Context, userID string) ([]StepView, error) {
	if s.db == nil {
		return nil, newServiceError(opListSteps, "missing_database", errMissingDatabase)
	}
	if userID == "" {
		return nil, newServiceError(opListSteps, "missing_user_id", errMissingUserID)
	}

	var steps []MigrationStep
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").
		Find(&steps).Error; err != nil {
		s.logError(opListSteps, "query_failed", err, zap.String("user_id", userID))
		return nil, newServiceError(opListSteps, "query_failed", err)
	}

	views := make([]StepView, 0, len(steps))
	for _, step := range steps {
		view := StepView{MigrationStep: step}
		var country catalog.Country
		if err := s.db.WithContext(ctx).Where("id = ?", step.CountryID).Take(&country).Error; err == nil {
			view.CountryName = country.Name
			view.CountryISO = country.IsoCode
		}
		if step.VisaID != nil {
			var visa catalog.Visa
			if err := s.db.WithContext(ctx).Where("id = ?", *step.VisaID).Take(&visa).Error; err == nil {
				name := visa.VisaName
				view.VisaName = &name
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.loggerOrDefault().Error("journey service error", attrs...)
}

func (s *Service) loggerOrDefault() *zap.Logger {
	if s == nil || s.logger == nil {
		return noOpLogger
	}
	return s.logger
}
