package slot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record is one row of the kv_slots table.
type Record struct {
	Key       string         `gorm:"primaryKey;size:191" json:"key"`
	Value     datatypes.JSON `gorm:"not null" json:"value"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Record) TableName() string { return "kv_slots" }

type gormSlot struct {
	db  *gorm.DB
	key string
}

// NewGorm keeps the slot as one row keyed by key. The table must exist
// (see db.AutoMigrateAll).
func NewGorm(db *gorm.DB, key string) (Slot, error) {
	if db == nil {
		return nil, errors.New("gorm db required")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	return &gormSlot{db: db, key: key}, nil
}

func (s *gormSlot) Load(ctx context.Context) ([]byte, error) {
	var row Record
	err := s.db.WithContext(ctx).Where(&Record{Key: s.key}).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load slot %q: %w", s.key, err)
	}
	return []byte(row.Value), nil
}

func (s *gormSlot) Save(ctx context.Context, value []byte) error {
	row := Record{
		Key:       s.key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now().UTC(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save slot %q: %w", s.key, err)
	}
	return nil
}

func (s *gormSlot) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
