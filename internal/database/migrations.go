package database

import (
	"database/sql"
	"fmt"
	"io/fs"

	"storefront/migrations"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func prepareGoose(fsys fs.FS) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	return nil
}

// RunMigrations executes all pending embedded migrations
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	if err := prepareGoose(migrations.FS); err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...")

	if err := goose.Up(db, "."); err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("Migrations completed successfully", zap.Int64("version", version))
	return nil
}

// GetMigrationStatus prints the status of every embedded migration
func GetMigrationStatus(db *sql.DB) error {
	if err := prepareGoose(migrations.FS); err != nil {
		return err
	}

	return goose.Status(db, ".")
}
