package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"trade-journal-go/internal/attachments"
	"trade-journal-go/internal/auth"
	"trade-journal-go/internal/config"
	"trade-journal-go/internal/database"
	"trade-journal-go/internal/journal"
	"trade-journal-go/internal/logger"
	"trade-journal-go/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	// Wire the core components
	schedule := cfg.Charges.Schedule()
	store := journal.NewStore(db, log, schedule, cfg.Journal.PsychologyBlocklist)
	authSvc := auth.NewService(db, log, cfg.Auth)

	attStore, err := attachments.NewStore(cfg.Attachments.Dir, db, log)
	if err != nil {
		log.Fatal("Failed to initialize attachment storage", zap.Error(err))
	}

	metrics := server.NewMetrics(prometheus.DefaultRegisterer)
	handler := server.NewHandler(log, store, authSvc, attStore, schedule, metrics)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting journal API server", zap.String("address", addr))

	if err := http.ListenAndServe(addr, server.NewRouter(handler)); err != nil {
		log.Fatal("API server failed", zap.Error(err))
	}
}
