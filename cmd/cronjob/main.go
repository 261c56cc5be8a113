package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"guestflow-backend/internal/app"
	"guestflow-backend/internal/config"
	"guestflow-backend/internal/jobs"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/scheduler"
	"guestflow-backend/internal/security"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a job once and exit ('mark-no-shows', 'remind-pending-requests', 'redeliver-effects', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Guestflow cronjob runner...", "log_level", cfg.Log.Level)

	ctx := context.Background()
	repos, closeRepos, err := app.OpenRepositories(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeRepos()

	dispatcher, mailer, err := app.NewDispatcher(ctx, cfg, repos)
	if err != nil {
		logger.Error("Failed to initialize effect dispatcher", "error", err)
		log.Fatalf("Failed to initialize effect dispatcher: %v", err)
	}
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AgentExpiry(), cfg.JWT.GuestExpiry())
	svcs := app.NewServices(repos, tokenManager, dispatcher)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(jobs.Repositories{
		Events:   repos.Events,
		Guests:   repos.Guests,
		Requests: repos.Requests,
		Agents:   repos.Agents,
		Effects:  repos.Effects,
	}, jobs.Services{
		Guests:     svcs.Guests,
		Dispatcher: dispatcher,
		Mailer:     mailer,
	}, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := jobRunner.RunJob(*runOnce); err != nil {
			log.Fatalf("Failed to run job: %v", err)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		logger.Error("Failed to initialize scheduler", "error", err)
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}

	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	cronScheduler.Stop()
	logger.Info("Cronjob runner stopped")
}
