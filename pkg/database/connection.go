package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
}

// PoolConfig sizes the connection pool. This module runs one process
// against one database, unlike the teacher's per-service factory
// functions keyed by ServiceName; a caller picks a PoolConfig for its
// actual write pattern instead of a hardcoded per-service default.
type PoolConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	IsDevelopment   bool
}

// Open wraps any gorm.Dialector with the pool sizing, logging, and
// ping-on-connect behavior every caller in this package needs, whether
// the backing store is Postgres in production or SQLite in tests.
func Open(dialector gorm.Dialector, config PoolConfig) (*DB, error) {
	logLevel := logger.Error
	if config.IsDevelopment {
		logLevel = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"max_idle_conns":    config.MaxIdleConns,
		"max_open_conns":    config.MaxOpenConns,
		"conn_max_lifetime": config.ConnMaxLifetime,
	}).Info("database connection established")

	return &DB{db}, nil
}

// NewPostgresConnection opens the pool used by internal/store for batch-run
// bookkeeping: small and short-lived compared to a request-serving API,
// since each batch writes only one insert at its start and one update at
// its completion.
func NewPostgresConnection(databaseURL string, isDevelopment bool) (*DB, error) {
	return Open(postgres.Open(databaseURL), PoolConfig{
		MaxIdleConns:    5,
		MaxOpenConns:    20,
		ConnMaxLifetime: time.Hour,
		IsDevelopment:   isDevelopment,
	})
}

// NewSQLiteConnection opens a file- or memory-backed SQLite database (path
// ":memory:" for an ephemeral in-process database). Used by internal/store's
// tests so they exercise the real gorm query helpers without a Postgres
// fixture; pool sizing matters less here since SQLite connections are
// in-process, but a single open connection keeps an in-memory database from
// appearing empty to a second pooled connection.
func NewSQLiteConnection(path string) (*DB, error) {
	db, err := Open(sqlite.Open(path), PoolConfig{
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
