package journey

import (
	"errors"
	"time"
)

// StepKind distinguishes ordinary waypoints from the pinned birth-country record.
type StepKind string

const (
	// StepKindWaypoint is a country the user lived in, lives in, or is heading to.
	StepKindWaypoint StepKind = "waypoint"
	// StepKindBirth marks the user's origin-country record, always ordered last.
	StepKindBirth StepKind = "birth"
)

// MigrationReason enumerates the accepted reasons for a step.
var migrationReasons = map[string]struct{}{
	"work":       {},
	"study":      {},
	"family":     {},
	"refugee":    {},
	"retirement": {},
	"investment": {},
	"lifestyle":  {},
	"other":      {},
}

var (
	// ErrCountryRequired indicates a step change without a country identifier.
	ErrCountryRequired = errors.New("journey: country id is required")
	// ErrDeleteWithoutID indicates a deletion request without a persisted identifier.
	ErrDeleteWithoutID = errors.New("journey: cannot delete step without id")
	// ErrInvalidDate indicates a date string that could not be parsed.
	ErrInvalidDate = errors.New("journey: invalid date format")
)

// MigrationStep models one entry in a user's migration history.
type MigrationStep struct {
	ID              int64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID          string     `gorm:"column:user_id;size:190;not null;index:idx_migration_steps_user_position,priority:1" json:"userId"`
	Kind            StepKind   `gorm:"column:kind;size:16;not null;default:waypoint" json:"kind"`
	CountryID       int64      `gorm:"column:country_id;not null" json:"countryId"`
	VisaID          *int64     `gorm:"column:visa_id" json:"visaId"`
	IsCurrent       bool       `gorm:"column:is_current;not null;default:false" json:"isCurrentLocation"`
	IsTarget        bool       `gorm:"column:is_target;not null;default:false" json:"isTargetDestination"`
	ArrivedAt       *time.Time `gorm:"column:arrived_at" json:"arrivedDate"`
	LeftAt          *time.Time `gorm:"column:left_at" json:"leftDate"`
	Notes           *string    `gorm:"column:notes;size:500" json:"notes"`
	MigrationReason *string    `gorm:"column:migration_reason;size:32" json:"migrationReason"`
	WasSuccessful   bool       `gorm:"column:was_successful;not null;default:true" json:"wasSuccessful"`
	Position        int        `gorm:"column:position;not null;index:idx_migration_steps_user_position,priority:2" json:"position"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (MigrationStep) TableName() string {
	return "migration_steps"
}

// StepChange describes one client-submitted change request, already coerced to
// canonical types at the transport boundary.
type StepChange struct {
	ID              int64
	Delete          bool
	CountryID       int64
	VisaID          int64
	VisaName        string
	ArrivedDate     string
	LeftDate        string
	Notes           string
	MigrationReason string
	IsCurrent       bool
	IsTarget        bool
	WasSuccessful   bool
}

// StepResult reports the outcome of one processed change request.
type StepResult struct {
	ID      int64          `json:"id"`
	Deleted bool           `json:"deleted"`
	Step    *MigrationStep `json:"step,omitempty"`
}
