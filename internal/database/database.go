package database

import (
	"fmt"

	"planora-api/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the SQLite database at path and runs migrations.
// Using glebarez/sqlite which is a pure Go implementation (no CGO
// required). The returned handle is passed explicitly to every service
// so tests can substitute their own.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for all Planora models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TaskAssignee{},
		&models.TaskLabel{},
		&models.Sprint{},
		&models.Label{},
		&models.Comment{},
		&models.Attachment{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	// Store-level guard for the single-active-sprint invariant. The
	// service also checks inside a transaction, but a concurrent insert
	// that slips past the check must still fail here.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_sprints_one_active
		 ON sprints (project_id) WHERE status = 'active'`,
	).Error; err != nil {
		return fmt.Errorf("create active-sprint index: %w", err)
	}
	return nil
}
