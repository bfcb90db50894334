package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/advanced-rating/internal/data/slot"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&slot.Record{},
	)
}
