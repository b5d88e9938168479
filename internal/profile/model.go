package profile

import "time"

// UserProfile holds the mutable profile fields attached to an account.
type UserProfile struct {
	ID                    string    `gorm:"column:id;primaryKey;size:190;not null" json:"id"`
	UserID                string    `gorm:"column:user_id;size:190;not null;uniqueIndex" json:"userId"`
	FullName              string    `gorm:"column:full_name;size:190" json:"fullName"`
	DisplayName           string    `gorm:"column:display_name;size:190" json:"displayName"`
	Bio                   *string   `gorm:"column:bio;size:500" json:"bio"`
	AvatarURL             string    `gorm:"column:avatar_url;size:512" json:"avatarUrl"`
	CurrentCity           string    `gorm:"column:current_city;size:190" json:"currentCity"`
	DestinationCity       string    `gorm:"column:destination_city;size:190" json:"destinationCity"`
	OriginCountry         string    `gorm:"column:origin_country;size:190" json:"originCountry"`
	MigrationStage        string    `gorm:"column:migration_stage;size:32" json:"migrationStage"`
	Profession            string    `gorm:"column:profession;size:190" json:"profession"`
	Industry              string    `gorm:"column:industry;size:190" json:"industry"`
	IsPrivate             bool      `gorm:"column:is_private;not null;default:false" json:"isPrivate"`
	IsOnboardingCompleted bool      `gorm:"column:is_onboarding_completed;not null;default:false" json:"isOnboardingCompleted"`
	CreatedAt             time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName provides the explicit table binding for GORM.
func (UserProfile) TableName() string {
	return "user_profiles"
}

// UserLanguage links an account to a catalog language.
type UserLanguage struct {
	ID         int64  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     string `gorm:"column:user_id;size:190;not null;uniqueIndex:idx_user_languages_pair,priority:1"`
	LanguageID int64  `gorm:"column:language_id;not null;uniqueIndex:idx_user_languages_pair,priority:2"`
}

// TableName provides the explicit table binding for GORM.
func (UserLanguage) TableName() string {
	return "user_languages"
}

// UserInterest links an account to a catalog interest.
type UserInterest struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     string    `gorm:"column:user_id;size:190;not null;uniqueIndex:idx_user_interests_pair,priority:1"`
	InterestID int64     `gorm:"column:interest_id;not null;uniqueIndex:idx_user_interests_pair,priority:2"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName provides the explicit table binding for GORM.
func (UserInterest) TableName() string {
	return "user_interests"
}

// ProfileUpdate carries a partial field merge; nil fields are left untouched.
type ProfileUpdate struct {
	FullName        *string `json:"fullName"`
	DisplayName     *string `json:"displayName"`
	Bio             *string `json:"bio"`
	AvatarURL       *string `json:"avatarUrl"`
	CurrentCity     *string `json:"currentCity"`
	DestinationCity *string `json:"destinationCity"`
	OriginCountry   *string `json:"originCountry"`
	MigrationStage  *string `json:"migrationStage"`
	Profession      *string `json:"profession"`
	Industry        *string `json:"industry"`
	IsPrivate       *bool   `json:"isPrivate"`
}
