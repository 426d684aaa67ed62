package persistence

import (
	"fmt"

	"github.com/alfred/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table from the GORM models and adds the
// partial unique indexes. Production schemas come from the SQL migrations; this
// path serves tests and throwaway development databases.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	for _, stmt := range models.PartialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
