package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"accu-registry/config"
	"accu-registry/models"
)

// Database represents the database connection
type Database struct {
	DB *gorm.DB
}

// NewDatabase opens the registry database
func NewDatabase(cfg *config.Config) (*Database, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &Database{DB: db}, nil
}

// GetDB returns the underlying gorm instance
func (d *Database) GetDB() *gorm.DB {
	return d.DB
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Connect establishes the connection, configures the pool and runs migrations
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.DBName,
	)

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting connection pool: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("running SQL migrations: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrating models: %w", err)
	}

	return db, nil
}

// runMigrations applies the SQL migrations under migrations/
func runMigrations(cfg *config.Config) error {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.DBName,
	)

	m, err := migrate.New(
		"file://migrations",
		dsn,
	)
	if err != nil {
		return fmt.Errorf("creating migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("applying migrations: %w", err)
	}

	return nil
}

// AutoMigrate creates or updates the schema for all registry models
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Entity{},
		&models.User{},
		&models.Creditor{},
		&models.Project{},
		&models.ACCU{},
		&models.Loan{},
		&models.ReclassificationRequest{},
		&models.MarketPrice{},
		&models.ValuationLog{},
	)
	if err != nil {
		return fmt.Errorf("auto migration: %w", err)
	}

	return nil
}
