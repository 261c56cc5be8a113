// Package app wires configuration into stores, services and delivery for the
// server and cronjob binaries.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"guestflow-backend/internal/config"
	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/notify"
	"guestflow-backend/internal/repository"
	"guestflow-backend/internal/repository/memory"
	"guestflow-backend/internal/repository/postgres"
	"guestflow-backend/internal/security"
	"guestflow-backend/internal/service"
)

// Repositories is the backend-independent set of stores.
type Repositories struct {
	Tx            repository.Transactor
	Events        repository.EventRepository
	Labels        repository.LabelRepository
	Guests        repository.GuestRepository
	Pools         repository.PoolRepository
	Perks         repository.PerkRepository
	Budgets       repository.BudgetRepository
	Requests      repository.RequestRepository
	Itinerary     repository.ItineraryRepository
	Agents        repository.AgentRepository
	Notifications repository.NotificationRepository
	Effects       repository.EffectRepository
}

// OpenRepositories connects the configured storage backend. close releases it.
func OpenRepositories(ctx context.Context, cfg *config.Config) (repos Repositories, close func(), err error) {
	switch cfg.Storage.Type {
	case config.StorageMemory:
		logger.Warn("Using in-memory storage, data is lost on exit")
		s := memory.NewStore()
		return Repositories{
			Tx:            s.Transactor(),
			Events:        s.Events(),
			Labels:        s.Labels(),
			Guests:        s.Guests(),
			Pools:         s.Pools(),
			Perks:         s.Perks(),
			Budgets:       s.Budgets(),
			Requests:      s.Requests(),
			Itinerary:     s.Itinerary(),
			Agents:        s.Agents(),
			Notifications: s.Notifications(),
			Effects:       s.Effects(),
		}, func() {}, nil

	case config.StoragePostgres:
		logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
		db, err := postgres.Open(ctx, cfg.GetDatabaseConnectionString())
		if err != nil {
			return Repositories{}, nil, fmt.Errorf("connect to database: %w", err)
		}
		if cfg.Database.Migrate {
			if err := postgres.Migrate(ctx, db); err != nil {
				db.Close()
				return Repositories{}, nil, fmt.Errorf("migrate database: %w", err)
			}
		}
		logger.Info("Database connection established")
		return fromPostgres(postgres.NewStore(db)), closeDB(db), nil

	default:
		return Repositories{}, nil, fmt.Errorf("unsupported storage type %q", cfg.Storage.Type)
	}
}

func fromPostgres(s *postgres.Store) Repositories {
	return Repositories{
		Tx:            s.Transactor,
		Events:        s.Events,
		Labels:        s.Labels,
		Guests:        s.Guests,
		Pools:         s.Pools,
		Perks:         s.Perks,
		Budgets:       s.Budgets,
		Requests:      s.Requests,
		Itinerary:     s.Itinerary,
		Agents:        s.Agents,
		Notifications: s.Notifications,
		Effects:       s.Effects,
	}
}

func closeDB(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}
}

// NewMailer sends through SendGrid when an API key is configured and logs
// emails otherwise.
func NewMailer(cfg *config.Config) notify.Mailer {
	if cfg.SendGrid.APIKey == "" {
		logger.Info("SendGrid API key not set, emails are logged")
		return notify.NewLogMailer()
	}
	return notify.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
}

// NewPusher connects Firebase messaging when enabled.
func NewPusher(ctx context.Context, cfg *config.Config) (notify.Pusher, error) {
	if !cfg.Firebase.Enabled {
		return notify.NewNoopPusher(), nil
	}
	return notify.NewFirebasePusher(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
}

// NewDispatcher builds the effect dispatcher with the configured channels.
func NewDispatcher(ctx context.Context, cfg *config.Config, repos Repositories) (*notify.Dispatcher, notify.Mailer, error) {
	mailer := NewMailer(cfg)
	pusher, err := NewPusher(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return notify.NewDispatcher(repos.Guests, repos.Notifications, repos.Effects, mailer, pusher), mailer, nil
}

// Services is every domain service, built over one set of repositories.
type Services struct {
	Auth          service.AuthService
	Guests        service.GuestService
	Inventory     service.InventoryService
	Requests      service.RequestService
	Itinerary     service.ItineraryService
	Notifications service.NotificationService
}

func NewServices(repos Repositories, tokens security.TokenManager, dispatcher service.EffectDispatcher) Services {
	return Services{
		Auth:          service.NewAuthService(repos.Agents, repos.Guests, tokens),
		Guests:        service.NewGuestService(repos.Tx, repos.Events, repos.Labels, repos.Guests, repos.Pools, repos.Effects, dispatcher),
		Inventory:     service.NewInventoryService(repos.Tx, repos.Events, repos.Pools, repos.Guests, repos.Effects, dispatcher),
		Requests:      service.NewRequestService(repos.Tx, repos.Guests, repos.Perks, repos.Budgets, repos.Requests, repos.Effects, dispatcher),
		Itinerary:     service.NewItineraryService(repos.Tx, repos.Events, repos.Guests, repos.Itinerary, repos.Effects, dispatcher),
		Notifications: service.NewNotificationService(repos.Notifications),
	}
}

// BootstrapAgent creates the configured first agent unless an agent with that
// email already exists.
func BootstrapAgent(ctx context.Context, cfg config.BootstrapConfig, agents repository.AgentRepository, auth service.AuthService) error {
	if cfg.AgentEmail == "" {
		return nil
	}
	_, err := agents.GetByEmail(ctx, cfg.AgentEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	agent, err := auth.CreateAgent(ctx, cfg.AgentEmail, cfg.AgentName, cfg.AgentPassword, cfg.EventIDs)
	if err != nil {
		return fmt.Errorf("bootstrap agent: %w", err)
	}
	logger.Info("Bootstrap agent created", "agentID", agent.ID, "email", agent.Email)
	return nil
}
