package db

import (
	"path/filepath"
	"testing"

	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

func TestNewServiceSQLiteMigrates(t *testing.T) {
	svc, err := NewService(logger.Nop(), Options{
		Driver: DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "data", "ratings.db"),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	if !svc.DB().Migrator().HasTable("kv_slots") {
		t.Fatalf("kv_slots table missing after migrate")
	}
}

func TestNewServiceRejectsUnknownDriver(t *testing.T) {
	if _, err := NewService(logger.Nop(), Options{Driver: "mysql", DSN: "x"}); err == nil {
		t.Fatalf("NewService: want error for unsupported driver")
	}
	if _, err := NewService(logger.Nop(), Options{Driver: DriverPostgres}); err == nil {
		t.Fatalf("NewService: want error for missing postgres DSN")
	}
}
