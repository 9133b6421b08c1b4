package db

import (
	"fmt"

	"github.com/groupable/groupable/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for the membership tables. The
// (group_id, user_id) unique index on members is required: it is what
// closes the concurrent-join race at the storage level.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	if errMigrate := conn.AutoMigrate(
		&models.Group{},
		&models.Member{},
		&models.Invite{},
	); errMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errMigrate)
	}
	if !conn.Migrator().HasIndex(&models.Member{}, "idx_members_group_user") {
		return fmt.Errorf("db: migrate: members unique index missing")
	}
	return nil
}
