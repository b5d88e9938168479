package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errMissingDatabase = errors.New("catalog: database handle is required")

// ServiceConfig describes the dependencies for catalog reads.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service serves the read-only reference catalogs.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the catalog service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// ListLanguages returns active languages ordered by name, optionally filtered
// by a case-insensitive match on name or native name.
func (s *Service) ListLanguages(ctx context.Context, search string) ([]Language, error) {
	query := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC")
	if trimmed := strings.TrimSpace(search); trimmed != "" {
		pattern := "%" + strings.ToLower(trimmed) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(native_name) LIKE ?", pattern, pattern)
	}

	var languages []Language
	if err := query.Find(&languages).Error; err != nil {
		return nil, fmt.Errorf("catalog: list languages: %w", err)
	}
	return languages, nil
}

// ListInterests returns active interests ordered by name, filtered by
// case-insensitive name and category matches when supplied.
func (s *Service) ListInterests(ctx context.Context, name, category string) ([]Interest, error) {
	query := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC")
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(trimmed)+"%")
	}
	if trimmed := strings.TrimSpace(category); trimmed != "" {
		query = query.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(trimmed)+"%")
	}

	var interests []Interest
	if err := query.Find(&interests).Error; err != nil {
		return nil, fmt.Errorf("catalog: list interests: %w", err)
	}
	return interests, nil
}

// ListCountryVisas returns the public visas for a country, most recently
// updated first.
func (s *Service) ListCountryVisas(ctx context.Context, countryID int64) ([]Visa, error) {
	var visas []Visa
	err := s.db.WithContext(ctx).
		Where("country_id = ? AND is_public = ?", countryID, true).
		Order("updated_at DESC").
		Find(&visas).Error
	if err != nil {
		return nil, fmt.Errorf("catalog: list country visas: %w", err)
	}
	return visas, nil
}

// FindCountry resolves a country by exact ISO code first, then by a
// case-insensitive name fragment. A miss returns nil without error.
func (s *Service) FindCountry(ctx context.Context, nameOrISO string) (*Country, error) {
	trimmed := strings.TrimSpace(nameOrISO)
	if trimmed == "" {
		return nil, nil
	}

	if len(trimmed) <= 3 {
		var country Country
		err := s.db.WithContext(ctx).
			Where("iso_code = ?", strings.ToUpper(trimmed)).
			Take(&country).Error
		if err == nil {
			return &country, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("catalog: find country by iso: %w", err)
		}
	}

	var country Country
	err := s.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(trimmed)+"%").
		Order("name ASC").
		Take(&country).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: find country by name: %w", err)
	}
	return &country, nil
}
