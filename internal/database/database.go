// Package database provides the GORM-backed persistence layer with connection
// pooling and auto-migration.
package database

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/meetscribe/meetscribe/internal/logger"
)

// DB wraps a GORM database handle with service logging.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// Open opens the sqlite database and configures the connection pool.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("database config: %w", err)
	}

	slowThreshold, _ := time.ParseDuration(cfg.SlowQueryThreshold)

	db, err := gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{
		Logger: newGormLogger(log, slowThreshold, parseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.DSN, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if lifetime, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(lifetime)
	}

	log.Info("Database connection established", map[string]interface{}{
		"dsn": cfg.DSN,
	})
	return &DB{GormDB: db, log: log.WithComponent("database"), cfg: cfg}, nil
}

// AutoMigrate runs GORM auto-migration for the given models when enabled.
func (d *DB) AutoMigrate(models ...interface{}) error {
	if !d.cfg.AutoMigrate {
		return nil
	}
	if err := d.GormDB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	d.log.Info("Auto-migration completed", map[string]interface{}{
		"models": len(models),
	})
	return nil
}

// WithContext returns a GORM session scoped to the given context.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}

// Close closes the underlying connection pool. Safe to call multiple times.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.log.Info("Closing database connection")
	d.closed = true
	return sqlDB.Close()
}

// Ping verifies the database connection is alive.
func (d *DB) Ping(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
