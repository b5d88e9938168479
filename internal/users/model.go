package users

import (
	"strings"
	"time"
)

// User is the canonical account row keyed by the bearer token subject.
type User struct {
	ID                     string    `gorm:"column:id;primaryKey;size:190;not null"`
	Email                  string    `gorm:"column:email;size:320"`
	HasCompletedOnboarding bool      `gorm:"column:has_completed_onboarding;not null;default:false"`
	LastSeenAt             time.Time `gorm:"column:last_seen_at;autoUpdateTime"`
	CreatedAt              time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName exposes the table backing user accounts.
func (User) TableName() string {
	return "users"
}

// normalize value helper used across service implementation.
func normalize(value string) string {
	return strings.TrimSpace(value)
}
