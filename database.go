package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

const (
	dbMaxRetries = 60
	dbRetryDelay = 2 * time.Second
)

// normalizeDatabaseURL rewrites postgresql:// to postgres:// and disables
// sslmode unless the URL sets it.
func normalizeDatabaseURL(databaseURL string) string {
	if databaseURL == "" {
		return defaultDatabaseURL
	}
	if strings.HasPrefix(databaseURL, "postgresql:") {
		databaseURL = "postgres" + strings.TrimPrefix(databaseURL, "postgresql")
	}
	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "?"
		if strings.Contains(databaseURL, "?") {
			separator = "&"
		}
		databaseURL = databaseURL + separator + "sslmode=disable"
	}
	return databaseURL
}

// openDB connects to PostgreSQL, waiting for the server to accept
// connections for up to dbMaxRetries attempts.
func openDB(ctx context.Context, databaseURL string, logger *logrus.Logger) (*sql.DB, error) {
	config, err := pgx.ParseConfig(normalizeDatabaseURL(databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	for i := 0; i < dbMaxRetries; i++ {
		db := stdlib.OpenDB(*config)
		err := db.PingContext(ctx)
		if err == nil {
			logger.Info("Database connection established")
			return db, nil
		}
		db.Close()

		if i == dbMaxRetries-1 {
			return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", dbMaxRetries, err)
		}

		entry := logger.WithFields(logrus.Fields{
			"attempt":     i + 1,
			"max_retries": dbMaxRetries,
			"retry_in":    dbRetryDelay.String(),
		})
		// Log the actual error every 10 attempts
		if i%10 == 0 || i < 5 {
			entry = entry.WithError(err)
		}
		entry.Warn("Database not ready, retrying")

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for database: %w", ctx.Err())
		case <-time.After(dbRetryDelay):
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts", dbMaxRetries)
}

// initDB opens the database and makes sure the schema exists
func initDB(ctx context.Context, cfg Config, logger *logrus.Logger) (*sql.DB, error) {
	db, err := openDB(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
