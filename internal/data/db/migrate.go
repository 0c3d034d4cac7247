package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/model3d-backend/internal/domain"
)

// Models lists every table this service owns or reads, in creation order.
func Models() []any {
	return []any{
		&types.Animal{},
		&types.GenerationState{},
		&types.GenerationRecord{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
