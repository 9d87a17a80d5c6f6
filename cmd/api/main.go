package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nestegg/savings-ledger/internal/api"
	"github.com/nestegg/savings-ledger/internal/api/service"
	"github.com/nestegg/savings-ledger/internal/config"
	"github.com/nestegg/savings-ledger/internal/data/mongo"
	"github.com/nestegg/savings-ledger/internal/data/postgres"
	"github.com/nestegg/savings-ledger/internal/logger"
	"github.com/nestegg/savings-ledger/internal/platform/messaging/producers"
	"github.com/nestegg/savings-ledger/internal/platform/persistence"
	"github.com/nestegg/savings-ledger/internal/sweeper"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize status event producer (nil when the topic is not configured)
	eventProducer, err := producers.NewStatusEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize status event Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	goalRepo := postgres.NewGoalRepository(log, postgresDB)
	ledgerRepo := postgres.NewLedgerRepository(log, postgresDB)
	expenseRepo := postgres.NewExpenseRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	sweepState := postgres.NewSweepStateRepository(log, postgresDB)
	historyRepo := mongo.NewHistoryRepository(log, mongoDB.Database())

	// Initialize services
	goalService := service.NewGoalService(log, goalRepo, ledgerRepo, outboxRepo, postgresDB, eventProducer)
	ledgerService := service.NewLedgerService(log, goalRepo, ledgerRepo, expenseRepo, outboxRepo, historyRepo, postgresDB, eventProducer)

	// Initialize on-demand sweep path
	statusSweeper, err := sweeper.NewSweeper(log, goalRepo, eventProducer, cfg.Sweep.WorkerPoolSize)
	if err != nil {
		log.Error("Failed to initialize status sweeper", "error", err)
		os.Exit(1)
	}
	sweepScheduler := sweeper.NewScheduler(log, statusSweeper, sweepState, cfg.Sweep.MinInterval)

	// Initialize REST server
	server := api.NewServer(log, cfg, goalService, ledgerService, sweepScheduler)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	statusSweeper.Shutdown()

	// Shutdown HTTP server
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	if eventProducer != nil {
		if err = eventProducer.Close(); err != nil {
			log.Error("Error closing Kafka producer", "error", err)
		}
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
