package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrInvalidUserID indicates an empty or unusable user identifier.
var ErrInvalidUserID = errors.New("users: invalid user id")

// ServiceConfig describes the dependencies required for account resolution.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service manages canonical user account rows.
type Service struct {
	db     *gorm.DB
	now    func() time.Time
	logger *zap.Logger
}

// NewService constructs the account service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, now: clock, logger: logger}, nil
}

// EnsureUser returns the account row for the given subject, creating it on
// first sight. The email is refreshed when a non-empty value is supplied.
func (s *Service) EnsureUser(ctx context.Context, userID, email string) (User, error) {
	id := normalize(userID)
	if id == "" {
		return User{}, ErrInvalidUserID
	}

	var user User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = User{
			ID:         id,
			Email:      normalize(email),
			LastSeenAt: s.now(),
		}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return User{}, err
		}
		return user, nil
	}
	if err != nil {
		return User{}, err
	}

	updates := map[string]interface{}{"last_seen_at": s.now()}
	if mail := normalize(email); mail != "" && mail != user.Email {
		updates["email"] = mail
		user.Email = mail
	}
	// A failed refresh is not fatal; the caller already holds a valid row.
	if err := s.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		s.logger.Warn("user refresh failed", zap.String("user_id", id), zap.Error(err))
	}
	return user, nil
}

// MarkOnboardingCompleted flips the onboarding flag on the account row.
func (s *Service) MarkOnboardingCompleted(ctx context.Context, userID string) error {
	id := normalize(userID)
	if id == "" {
		return ErrInvalidUserID
	}
	return s.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		Update("has_completed_onboarding", true).Error
}
