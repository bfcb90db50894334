package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/advanced-rating/internal/config"
	"github.com/yungbote/advanced-rating/internal/data/db"
	"github.com/yungbote/advanced-rating/internal/data/eventstore"
	"github.com/yungbote/advanced-rating/internal/data/slot"
	"github.com/yungbote/advanced-rating/internal/platform/logger"
)

// OpenEventStore opens the slot named by cfg and wraps it in an event store.
// The caller owns the returned slot and must close it.
func OpenEventStore(ctx context.Context, log *logger.Logger, cfg config.StorageConfig) (*eventstore.Store, slot.Slot, error) {
	s, err := openSlot(ctx, log, cfg)
	if err != nil {
		return nil, nil, err
	}
	return eventstore.New(s, log), s, nil
}

func openSlot(ctx context.Context, log *logger.Logger, cfg config.StorageConfig) (slot.Slot, error) {
	log.Info("Opening rating log storage", "driver", cfg.Driver, "key", cfg.Key)

	switch cfg.Driver {
	case config.DriverMemory:
		return slot.NewMemory(), nil

	case config.DriverFile:
		return slot.NewFile(firstNonEmpty(cfg.Path, cfg.DSN))

	case config.DriverSQLite, config.DriverPostgres:
		dsn := cfg.DSN
		if cfg.Driver == config.DriverSQLite {
			dsn = firstNonEmpty(cfg.DSN, cfg.Path)
		}
		svc, err := db.NewService(log, db.Options{Driver: cfg.Driver, DSN: dsn})
		if err != nil {
			return nil, err
		}
		if err := svc.AutoMigrateAll(); err != nil {
			if sqlDB, dbErr := svc.DB().DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, err
		}
		return slot.NewGorm(svc.DB(), cfg.Key)

	case config.DriverRedis:
		rdb := goredis.NewClient(&goredis.Options{
			Addr:        cfg.RedisAddr,
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: 5 * time.Second,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return slot.NewRedis(rdb, cfg.Key)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
