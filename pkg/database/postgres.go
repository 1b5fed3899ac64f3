package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Kmaheshkanna2005/resource-management/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options tunes the scheduler's connection pool. Zero values fall back to
// the defaults in withDefaults.
type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        string

	// ConnectAttempts bounds how often the first ping is retried while the
	// database container is still starting.
	ConnectAttempts int
	RetryDelay      time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = 25
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = 10
	}
	if o.MaxIdleConns > o.MaxOpenConns {
		o.MaxIdleConns = o.MaxOpenConns
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = 5 * time.Minute
	}
	if o.ConnMaxIdleTime <= 0 {
		o.ConnMaxIdleTime = time.Minute
	}
	if o.ConnectAttempts <= 0 {
		o.ConnectAttempts = 1
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	return o
}

// Connect opens the pool, waits for the server to answer and migrates the
// scheduling tables.
func Connect(ctx context.Context, opts Options) (*gorm.DB, error) {
	opts = opts.withDefaults()

	// The first ping happens below, with retries.
	db, err := gorm.Open(postgres.Open(opts.DSN), &gorm.Config{
		Logger:               logger.Default.LogMode(gormLogLevel(opts.LogLevel)),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(opts.ConnMaxIdleTime)

	for attempt := 1; ; attempt++ {
		err = sqlDB.PingContext(ctx)
		if err == nil {
			break
		}
		if attempt >= opts.ConnectAttempts {
			sqlDB.Close()
			return nil, fmt.Errorf("ping database after %d attempts: %w", attempt, err)
		}
		log.Printf("[Database] not ready (attempt %d/%d): %v", attempt, opts.ConnectAttempts, err)
		select {
		case <-ctx.Done():
			sqlDB.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RetryDelay):
		}
	}

	if err := Migrate(db); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return db, nil
}

// Migrate creates the scheduling tables. Allocations reference events and
// resources with ON DELETE CASCADE and carry a unique (event_id, resource_id)
// index.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Event{}, &models.Resource{}, &models.Allocation{})
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}
