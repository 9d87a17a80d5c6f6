package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/nestegg/savings-ledger/internal/config"
	"github.com/nestegg/savings-ledger/internal/data/mongo"
	"github.com/nestegg/savings-ledger/internal/data/postgres"
	"github.com/nestegg/savings-ledger/internal/logger"
	"github.com/nestegg/savings-ledger/internal/platform/messaging/producers"
	"github.com/nestegg/savings-ledger/internal/platform/persistence"
	"github.com/nestegg/savings-ledger/internal/sweeper"
	"github.com/nestegg/savings-ledger/internal/sweeper/outbox_poller"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("sweeper")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting Sweeper",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

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

	// Initialize repositories
	goalRepo := postgres.NewGoalRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	sweepState := postgres.NewSweepStateRepository(log, postgresDB)
	historyRepo := mongo.NewHistoryRepository(log, mongoDB.Database())

	// Initialize status event producer (nil when the topic is not configured)
	eventProducer, err := producers.NewStatusEventProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize status event Kafka producer", "error", err)
		os.Exit(1)
	}

	// Initialize sweeper and scheduler
	statusSweeper, err := sweeper.NewSweeper(log, goalRepo, eventProducer, cfg.Sweep.WorkerPoolSize)
	if err != nil {
		log.Error("Failed to initialize status sweeper", "error", err)
		os.Exit(1)
	}
	sweepScheduler := sweeper.NewScheduler(log, statusSweeper, sweepState, cfg.Sweep.MinInterval)

	// Initialize outbox poller
	historyPublisher := outbox_poller.NewHistoryPublisher(
		outboxRepo,
		historyRepo,
		log,
	)
	poller := outbox_poller.NewPoller(
		&cfg.Outbox,
		outboxRepo,
		historyPublisher,
		log,
	)

	// Create wait group for graceful shutdown
	var wg sync.WaitGroup

	// Start sweep scheduler in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweepScheduler.Start(appCtx)
	}()

	// Start outbox poller in a goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	<-quit
	log.Info("Shutdown signal received")

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Wait for all goroutines to finish
	wgChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(wgChan)
	}()

	select {
	case <-wgChan:
		log.Info("All services stopped successfully")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	statusSweeper.Shutdown()

	if eventProducer != nil {
		if err = eventProducer.Close(); err != nil {
			log.Error("Error closing Kafka producer", "error", err)
		}
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	// Close MongoDB connection
	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if err != nil {
		log.Error("Sweeper shutdown completed with errors")
	} else {
		log.Info("Sweeper shutdown completed successfully")
	}
}
