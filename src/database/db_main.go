package database

import (
	"fmt"
	"strings"
	"time"

	"binarytrader/src/database/migrations"
	"binarytrader/src/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// MainDB is the read/write connection holding the preference rows.
var MainDB *gorm.DB

// DriverFor picks the gorm driver for dsn.
func DriverFor(dsn string) string {
	d := strings.TrimSpace(dsn)
	if strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://") || strings.Contains(d, "host=") {
		return DriverPostgres
	}
	return DriverSQLite
}

func dialector(dsn string) gorm.Dialector {
	if DriverFor(dsn) == DriverPostgres {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

// Open connects and migrates without touching MainDB.
func Open(config Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(config.DatabaseURLMain),
		&gorm.Config{
			TranslateError: true,
			Logger:         logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
		},
	)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", DriverFor(config.DatabaseURLMain), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB from gorm: %w", err)
	}
	if DriverFor(config.DatabaseURLMain) == DriverSQLite {
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(config.MaxOpenConns)
		sqlDB.SetMaxIdleConns(config.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(1 * time.Hour)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs the schema and data migrations.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Preference{},
		&migrations.DataMigration{},
	); err != nil {
		return fmt.Errorf("failed to run migrations on MainDB: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run data migrations on MainDB: %w", err)
	}
	return nil
}

// InitMainDB opens the main database and assigns MainDB.
// This should be called once at application startup.
func InitMainDB() error {
	config := GetConfig()
	db, err := Open(config)
	if err != nil {
		return err
	}
	MainDB = db

	logrus.WithField("driver", DriverFor(config.DatabaseURLMain)).Info("[database] MainDB connection established")
	return nil
}
