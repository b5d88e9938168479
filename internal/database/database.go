package database

import (
	"fmt"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/WellingtonDevBR/immigru-app/internal/catalog"
	"github.com/WellingtonDevBR/immigru-app/internal/journey"
	"github.com/WellingtonDevBR/immigru-app/internal/posts"
	"github.com/WellingtonDevBR/immigru-app/internal/profile"
	"github.com/WellingtonDevBR/immigru-app/internal/users"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open establishes a database connection for the configured driver and
// performs schema migrations.
func Open(driver, dsn string, logger *zap.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database dsn is required")
	}

	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if driver == DriverSQLite || driver == "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(
		&users.User{},
		&catalog.Country{},
		&catalog.Visa{},
		&catalog.Language{},
		&catalog.Interest{},
		&journey.MigrationStep{},
		&profile.UserProfile{},
		&profile.UserLanguage{},
		&profile.UserInterest{},
		&posts.Post{},
		&posts.LinkPreview{},
		&posts.PostLike{},
		&posts.PostComment{},
		&posts.Grove{},
		&posts.GroveMember{},
		&posts.UserFollow{},
		&migrationRecord{},
	); err != nil {
		return nil, err
	}

	if err := applyMigrations(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("driver", driver))
	}

	return db, nil
}
