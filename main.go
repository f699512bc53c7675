package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"recipeshare/internal/config"
	"recipeshare/internal/server"
	"recipeshare/internal/store"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yml"
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := store.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := store.MigrateDB(db, cfg.Database.Name, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	users := store.NewPostgresCollection(db, "users", logger)
	recipes := store.NewPostgresCollection(db, "recipes", logger)

	srv, err := server.NewServer(users, recipes, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to build server", zap.Error(err))
	}

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Run(ctx, cfg.Server.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}

	logger.Info("Application stopped.")
}
