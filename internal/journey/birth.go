package journey

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const opPinBirthStep = "journey.pin_birth_step"

// PinBirthStep records the user's origin country as the single birth-kind
// step, creating it on first sight or repointing it to a new country. The
// ordering pass keeps it last.
func (s *Service) PinBirthStep(ctx context.Context, userID string, countryID int64) (*MigrationStep, error) {
	if s.db == nil {
		return nil, newServiceError(opPinBirthStep, "missing_database", errMissingDatabase)
	}
	if userID == "" {
		return nil, newServiceError(opPinBirthStep, "missing_user_id", errMissingUserID)
	}
	if countryID == 0 {
		return nil, newServiceError(opPinBirthStep, "country_required", ErrCountryRequired)
	}

	var pinned *MigrationStep
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []*MigrationStep
		if err := tx.Where("user_id = ?", userID).Order("position ASC").Find(&existing).Error; err != nil {
			s.logError(opPinBirthStep, "step_select_failed", err, zap.String("user_id", userID))
			return newServiceError(opPinBirthStep, "step_select_failed", err)
		}

		for _, step := range existing {
			if step.Kind != StepKindBirth {
				continue
			}
			pinned = step
			break
		}

		if pinned != nil {
			if pinned.CountryID != countryID {
				pinned.CountryID = countryID
				if err := tx.Model(&MigrationStep{}).Where("id = ?", pinned.ID).Update("country_id", countryID).Error; err != nil {
					s.logError(opPinBirthStep, "step_update_failed", err, zap.String("user_id", userID))
					return newServiceError(opPinBirthStep, "step_update_failed", err)
				}
			}
		} else {
			pinned = &MigrationStep{
				UserID:        userID,
				Kind:          StepKindBirth,
				CountryID:     countryID,
				WasSuccessful: true,
				Position:      maxPosition(existing) + 1,
			}
			if err := tx.Create(pinned).Error; err != nil {
				s.logError(opPinBirthStep, "step_insert_failed", err, zap.String("user_id", userID))
				return newServiceError(opPinBirthStep, "step_insert_failed", err)
			}
			existing = append(existing, pinned)
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
				s.logError(opPinBirthStep, "reorder_update_failed", err, zap.String("user_id", userID))
				return newServiceError(opPinBirthStep, "reorder_update_failed", err)
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return pinned, nil
}
