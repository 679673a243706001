package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// setupDatabase creates tables and seeds the default budget categories
func setupDatabase(ctx context.Context, cfg Config, logger *logrus.Logger) error {
	db, err := openDB(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	logger.Info("Creating database schema...")
	if err := ensureSchema(ctx, db); err != nil {
		return err
	}
	logger.Info("Schema created successfully")

	logger.Info("Seeding budget categories...")
	result, err := db.ExecContext(ctx, seedSQL)
	if err != nil {
		return fmt.Errorf("failed to seed budget categories: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	logger.WithField("rows_affected", rowsAffected).Info("Budget categories seeded successfully")
	return nil
}

// seedDemo inserts demo transactions and goals into an empty ledger
func seedDemo(ctx context.Context, cfg Config, logger *logrus.Logger) error {
	db, err := initDB(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, seedSQL); err != nil {
		return fmt.Errorf("failed to seed budget categories: %w", err)
	}
	return seedDemoData(ctx, db)
}
