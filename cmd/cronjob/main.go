package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/ailubes/veterans-orden-sub001/internal/catalog"
	"github.com/ailubes/veterans-orden-sub001/internal/config"
	"github.com/ailubes/veterans-orden-sub001/internal/jobs"
	"github.com/ailubes/veterans-orden-sub001/internal/logger"
	"github.com/ailubes/veterans-orden-sub001/internal/repository/postgres"
	"github.com/ailubes/veterans-orden-sub001/internal/scheduler"
	"github.com/ailubes/veterans-orden-sub001/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'process-recheck-queue')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting membership progression cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
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

	// Initialize Services. Jobs run headless, so notifications are disabled
	// unless a SendGrid key is configured.
	var emailService service.EmailService = service.NoopEmailService{}
	if cfg.Email.SendGridAPIKey != "" {
		emailService = service.NewEmailService(cfg.Email.SendGridAPIKey, cfg.Email.FromEmail, cfg.Email.FromName)
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

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(store.RecheckQueueRepository, statsService, advancementService, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "process-recheck-queue":
		jobRunner.ProcessRecheckQueue()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - process-recheck-queue\n")
		os.Exit(1)
	}
}
