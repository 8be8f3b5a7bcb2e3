package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	httpapi "github.com/ailubes/veterans-orden-sub001/internal/api/http"
	"github.com/ailubes/veterans-orden-sub001/internal/catalog"
	"github.com/ailubes/veterans-orden-sub001/internal/config"
	"github.com/ailubes/veterans-orden-sub001/internal/logger"
	"github.com/ailubes/veterans-orden-sub001/internal/repository/postgres"
	"github.com/ailubes/veterans-orden-sub001/internal/security"
	"github.com/ailubes/veterans-orden-sub001/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting membership progression server...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Load and validate the rank catalog. A misconfigured catalog blocks
	// startup.
	var cat *catalog.Catalog
	if cfg.Catalog.Source == "file" {
		cat, err = catalog.LoadFile(cfg.Catalog.Path)
	} else {
		cat, err = catalog.LoadRepository(context.Background(), store.RequirementRepository)
	}
	if err != nil {
		logger.Error("Failed to load rank catalog", "error", err)
		log.Fatalf("Failed to load rank catalog: %v", err)
	}
	logger.Info("Rank catalog loaded", "ranks", len(cat.All()))

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Services
	var emailService service.EmailService = service.NoopEmailService{}
	if cfg.Email.SendGridAPIKey != "" {
		emailService = service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	} else {
		logger.Warn("No SendGrid API key configured, notifications disabled")
	}

	statsService := service.NewStatsService(
		store.MemberRepository,
		store.StatsRepository,
		store.AdvancementRepository,
		service.HelpedAdvanceScope(cfg.Progression.HelpedAdvanceScope),
		cfg.Progression.MaxTreeDepth,
	)
	progressService := service.NewProgressService(
		store.MemberRepository,
		store.ContributionRepository,
		statsService,
		cat,
	)
	advancementService := service.NewAdvancementService(
		store.MemberRepository,
		store.AdvancementRepository,
		store.AdvancementRequestRepository,
		store.SettingsRepository,
		store.RecheckQueueRepository,
		progressService,
		statsService,
		emailService,
	)

	// Initialize HTTP API
	router := mux.NewRouter()
	router.Use(httpapi.AdminAuth(tokenManager))
	handler := httpapi.NewAdvancementHandler(advancementService, progressService, cat)
	handler.RegisterRoutes(router)

	addr := cfg.GetServerAddress()
	logger.Info("HTTP server listening", "address", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		logger.Error("HTTP server failed", "error", err)
		log.Fatalf("HTTP server failed: %v", err)
	}
}
