package db

import (
	"fmt"
	"strings"
	"time"
	"yatube/internal/config"
	"yatube/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open connects with the given driver. SQLite connections always enforce
// foreign keys so cascades behave like Postgres.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverPostgres:
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(withForeignKeys(dsn))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: gormlogger.New(logrus.StandardLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", driver, err)
	}
	return conn, nil
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_fk=") || strings.Contains(dsn, "_foreign_keys=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}

// Init opens the configured database into DB, migrates it and seeds groups.
func Init(cfg *config.Config) error {
	conn, err := Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	DB = conn
	logrus.WithField("driver", cfg.DatabaseDriver).Info("Database connection established")

	if err := Migrate(DB); err != nil {
		return err
	}
	logrus.Info("Database migration completed")

	return SeedGroups(DB)
}

func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// SeedGroups creates the starter groups on an empty database.
func SeedGroups(conn *gorm.DB) error {
	var count int64
	if err := conn.Model(&models.Group{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count groups: %w", err)
	}
	if count > 0 {
		logrus.Debug("Groups already seeded, skipping")
		return nil
	}

	groups := []models.Group{
		{Title: "Cats", Slug: "cats", Description: "Everything about cats"},
		{Title: "Travel", Slug: "travel", Description: "Trips, routes and photos"},
		{Title: "Books", Slug: "books", Description: "What we read and why"},
	}
	for _, group := range groups {
		if err := conn.Create(&group).Error; err != nil {
			logrus.WithError(err).WithField("slug", group.Slug).Warn("Failed to create group")
		}
	}
	logrus.Info("Initial groups created")
	return nil
}
