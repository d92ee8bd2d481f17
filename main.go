// Package main is the entry point for the CookOff API server.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"cookoff/src/app/server"
	"cookoff/src/infra/config"
	"cookoff/src/infra/db"
	"cookoff/src/infra/logger"
	"cookoff/src/infra/repo"
)

func main() {
	if err := run(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present; real environment variables take precedence
	_ = godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize logger
	log := logger.New(cfg.Log)
	log.Info("starting application",
		"port", cfg.Server.Port,
		"log_level", cfg.Log.Level,
		"finalize_quorum", cfg.Contest.FinalizeQuorum,
	)

	// Initialize database connection
	pg, err := db.New(context.Background(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer pg.Close()

	// Initialize repositories
	contestRepo := repo.NewPostgresRepository(pg, log)

	// Create and run HTTP server
	srv := server.New(cfg, log, contestRepo)

	// Run blocks until shutdown signal is received
	return srv.Run()
}
