package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	flag "github.com/spf13/pflag"

	api "guestflow-backend/internal/api/grpc"
	"guestflow-backend/internal/api/grpc/interceptor"
	httpapi "guestflow-backend/internal/api/http"
	"guestflow-backend/internal/app"
	"guestflow-backend/internal/config"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/security"
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
	logger.Info("Starting Guestflow backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress(), "storage", cfg.Storage.Type)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Repositories
	repos, closeRepos, err := app.OpenRepositories(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer closeRepos()

	// Initialize effect delivery
	dispatcher, _, err := app.NewDispatcher(ctx, cfg, repos)
	if err != nil {
		logger.Error("Failed to initialize effect dispatcher", "error", err)
		log.Fatalf("Failed to initialize effect dispatcher: %v", err)
	}

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AgentExpiry(), cfg.JWT.GuestExpiry())
	authInterceptor := interceptor.NewAuthInterceptor(tokenManager)

	// Initialize Services
	svcs := app.NewServices(repos, tokenManager, dispatcher)
	if err := app.BootstrapAgent(ctx, cfg.Bootstrap, repos.Agents, svcs.Auth); err != nil {
		logger.Error("Failed to bootstrap agent", "error", err)
		log.Fatalf("Failed to bootstrap agent: %v", err)
	}

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := api.NewServer(api.Services{
		Auth:          svcs.Auth,
		Guests:        svcs.Guests,
		Inventory:     svcs.Inventory,
		Requests:      svcs.Requests,
		Itinerary:     svcs.Itinerary,
		Notifications: svcs.Notifications,
		Tokens:        tokenManager,
	}, authInterceptor.Unary())

	// Set up HTTP server for health, webhooks and rate display
	handler := httpapi.NewHandler(svcs.Inventory, validator.New(validator.WithRequiredStructEnabled()), cfg.Integrations.TBOWebhookSecret)
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           httpapi.NewRouter(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP shutdown failed", "error", err)
		}
		grpcServer.GracefulStop()
	}()

	logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
	if err := grpcServer.Serve(lis); err != nil {
		logger.Error("Failed to serve gRPC", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
	logger.Info("Server stopped")
}
