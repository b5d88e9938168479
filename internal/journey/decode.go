package journey

import (
	"encoding/json"
	"fmt"
)

// stepChangePayload is the canonical wire schema for one change request.
// Identifier and flag fields stay loosely typed so historical clients that
// send "true" or "1" keep working; field names are canonical only, no alias
// spellings.
type stepChangePayload struct {
	ID                  any    `json:"id"`
	IsDeleted           any    `json:"isDeleted"`
	CountryID           any    `json:"countryId"`
	VisaID              any    `json:"visaId"`
	VisaName            string `json:"visaName"`
	ArrivedDate         string `json:"arrivedDate"`
	LeftDate            string `json:"leftDate"`
	Notes               string `json:"notes"`
	MigrationReason     string `json:"migrationReason"`
	IsCurrentLocation   any    `json:"isCurrentLocation"`
	IsTargetDestination any    `json:"isTargetDestination"`
	WasSuccessful       any    `json:"wasSuccessful"`
}

// DecodeStepChanges parses the raw change array and coerces loose field
// values to canonical types.
func DecodeStepChanges(raw json.RawMessage) ([]StepChange, error) {
	var payloads []stepChangePayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return nil, fmt.Errorf("journey: step changes must be an array: %w", err)
	}

	changes := make([]StepChange, 0, len(payloads))
	for _, payload := range payloads {
		id, _ := CoerceID(payload.ID)
		countryID, _ := CoerceID(payload.CountryID)
		visaID, _ := CoerceID(payload.VisaID)
		changes = append(changes, StepChange{
			ID:              id,
			Delete:          CoerceBool(payload.IsDeleted, false),
			CountryID:       countryID,
			VisaID:          visaID,
			VisaName:        payload.VisaName,
			ArrivedDate:     payload.ArrivedDate,
			LeftDate:        payload.LeftDate,
			Notes:           payload.Notes,
			MigrationReason: payload.MigrationReason,
			IsCurrent:       CoerceBool(payload.IsCurrentLocation, false),
			IsTarget:        CoerceBool(payload.IsTargetDestination, false),
			WasSuccessful:   CoerceBool(payload.WasSuccessful, true),
		})
	}
	return changes, nil
}
