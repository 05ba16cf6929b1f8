package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/juniormojica/estuarriendo-sub000/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the configured database and applies the connection pool settings
func InitDB(dbConfig *config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dbConfig.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(dbConfig.SQLitePath)
	case config.DriverPostgres, "":
		dialector = postgres.New(postgres.Config{
			DSN:                  dbConfig.GetDSN(),
			PreferSimpleProtocol: true, // Disables implicit prepared statement usage
		})
	default:
		return nil, fmt.Errorf("unsupported database driver %q", dbConfig.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(dbConfig.LogLevel),
		// users is owned by the authentication service; references are checked in the service layer
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(dbConfig.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

// OpenInMemory opens a private in-memory sqlite database. A single connection
// is kept so every query sees the same database.
func OpenInMemory() (*gorm.DB, error) {
	return InitDB(&config.DBConfig{
		Driver:       config.DriverSQLite,
		SQLitePath:   ":memory:",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		LogLevel:     logger.Silent,
	})
}

// MigrateModels runs migrations for the provided models
func MigrateModels(db *gorm.DB, models ...interface{}) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

// SupportsRowLocks reports whether SELECT ... FOR UPDATE is meaningful for the dialect.
// SQLite serialises writers at the database level instead.
func SupportsRowLocks(db *gorm.DB) bool {
	return db.Dialector.Name() == config.DriverPostgres
}
