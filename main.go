package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack-backend/internal/budget"
)

const shutdownTimeout = 10 * time.Second

func main() {
	migrateCmd := flag.Bool("migrate", false, "Run database migration and seed default budget categories")
	seedDemoCmd := flag.Bool("seed-demo", false, "Seed demo transactions and goals (idempotent)")
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.AppEnv, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *migrateCmd {
		if err := setupDatabase(ctx, cfg, logger); err != nil {
			logger.WithError(err).Fatal("Migration failed")
		}
		logger.Info("Migration completed successfully")
		return
	}
	if *seedDemoCmd {
		if err := seedDemo(ctx, cfg, logger); err != nil {
			logger.WithError(err).Fatal("Seeding demo data failed")
		}
		logger.Info("Demo data seeded")
		return
	}

	db, err := initDB(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	redisClient, err := initRedis(ctx, cfg.RedisURL)
	if err != nil {
		logger.WithError(err).Warn("Failed to initialize Redis, continuing without cache")
	}
	c := newCache(redisClient, logger)
	defer c.close()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := newServer(newPGStore(db), c, budget.New(cfg.Thresholds), cfg.Cache, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(s, logger, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Error("Graceful shutdown failed")
		}
	}()

	logger.WithField("port", cfg.Port).Info("Server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("Failed to start server")
	}
	logger.Info("Server stopped")
}
