package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"onlyanon/internal/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const slowQueryThreshold = 500 * time.Millisecond

// gormConfig routes gorm's query log through slog. Queries are logged
// without bound values: access codes and payment signatures travel as
// parameters and must never reach the log.
func gormConfig(log *slog.Logger) *gorm.Config {
	if log == nil {
		log = slog.Default()
	}
	return &gorm.Config{
		Logger: logger.NewSlogLogger(log.With("component", "gorm"), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
		DisableForeignKeyConstraintWhenMigrating: true,
		// unique violations surface as gorm.ErrDuplicatedKey on both drivers
		TranslateError: true,
	}
}

// Connect opens a database for the given driver and DSN
func Connect(driver, dsn string, log *slog.Logger) (*gorm.DB, error) {
	switch driver {
	case DriverPostgres, "":
		return ConnectPostgres(dsn, log)
	case DriverSQLite:
		return ConnectSQLite(dsn, log)
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// ConnectPostgres establishes a connection to the hosted PostgreSQL database
func ConnectPostgres(dsn string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established", "driver", DriverPostgres)
	return db, nil
}

// ConnectSQLite opens a SQLite database, used for local development and tests.
// SQLite allows a single writer, so the pool is pinned to one connection.
func ConnectSQLite(dsn string, log *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(log))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate(db *gorm.DB) error {
	coreModels := []interface{}{
		&models.Creator{},
		&models.Offering{},
		&models.Question{},
		&models.Reply{},
	}

	for _, model := range coreModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	slog.Info("database migrations completed")
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
