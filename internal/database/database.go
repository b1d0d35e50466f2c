package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"irt-diagnostic-engine/internal/config"
	applogger "irt-diagnostic-engine/internal/logger"
	"irt-diagnostic-engine/internal/metrics"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the database connection used by the ingest layer's Postgres
// adapter (the backing store for the response-log and topic-catalog
// collaborators named in the external interfaces).
type DB struct {
	*gorm.DB
	metrics *metrics.Metrics
	logger  *applogger.Logger
}

// New opens a database connection.
func New(cfg *config.DatabaseConfig, metrics *metrics.Metrics, log *applogger.Logger) (*DB, error) {
	gormLogger := logger.New(
		log,
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("database connection established")

	return &DB{
		DB:      db,
		metrics: metrics,
		logger:  log,
	}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks database health.
func (db *DB) Health(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	sqlDB, _ := db.DB.DB()
	stats := sqlDB.Stats()

	db.metrics.DBConnections.Set(float64(stats.OpenConnections))

	return stats
}

// RecordOperation records metrics for a database operation.
func (db *DB) RecordOperation(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	db.metrics.RecordDBOperation(operation, status, duration)
}
