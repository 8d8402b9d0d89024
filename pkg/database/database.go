package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/leadforge/leadforge/pkg/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 5 * time.Minute
	pingTimeout     = 5 * time.Second
)

// Open connects to PostgreSQL when databaseURL is set, otherwise to a local
// SQLite file, and runs migrations. SQL query logging stays off so
// credentials stored in settings never reach the logs.
func Open(databaseURL, sqlitePath string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	if databaseURL != "" {
		log.Printf("🐘 Connecting to PostgreSQL...")
		dialector = postgres.Open(databaseURL)
	} else {
		log.Printf("📦 Using SQLite database at %s", sqlitePath)
		d, err := sqliteDialector(sqlitePath)
		if err != nil {
			return nil, err
		}
		dialector = d
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if databaseURL != "" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(maxOpenConns)
		sqlDB.SetMaxIdleConns(maxIdleConns)
		sqlDB.SetConnMaxLifetime(connMaxLifetime)
	}

	if err := ping(db); err != nil {
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("✅ Database ready")
	return db, nil
}

// OpenTest opens an in-memory SQLite database for tests.
func OpenTest() (*gorm.DB, error) {
	d, err := sqliteDialector(":memory:")
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open test database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate runs auto-migration for all entities.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Lead{},
		&models.Message{},
		&models.Campaign{},
		&models.CampaignLead{},
		&models.Setting{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// sqliteDialector builds a dialector on top of the pure-Go sqlite driver
// so builds stay cgo-free.
func sqliteDialector(path string) (gorm.Dialector, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	return sqlite.Dialector{DriverName: "sqlite", DSN: path, Conn: conn}, nil
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	return sqlDB.PingContext(ctx)
}
