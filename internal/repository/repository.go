package repository

import (
	"context"
	"time"

	"guestflow-backend/internal/domain"
)

// Transactor runs fn inside one transaction. Repository calls made with the ctx
// passed to fn join that transaction; the transaction commits when fn returns nil.
//
// Rows read with a ForUpdate method stay locked until the transaction ends.
// Callers take locks in the order pools, sessions (ascending id), guests.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	ListEndedBefore(ctx context.Context, t time.Time) ([]domain.Event, error)
	// ListActive returns events that have not ended at t.
	ListActive(ctx context.Context, t time.Time) ([]domain.Event, error)
}

type LabelRepository interface {
	Create(ctx context.Context, label *domain.Label) error
	GetByID(ctx context.Context, id string) (*domain.Label, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Label, error)
}

type GuestRepository interface {
	Create(ctx context.Context, guest *domain.Guest) error
	GetByID(ctx context.Context, id string) (*domain.Guest, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Guest, error)
	Update(ctx context.Context, guest *domain.Guest) error
	// ListByEvent filters by status unless status is empty.
	ListByEvent(ctx context.Context, eventID string, status domain.GuestStatus) ([]domain.Guest, error)
}

type PoolRepository interface {
	Create(ctx context.Context, pool *domain.ResourcePool) error
	GetByID(ctx context.Context, id string) (*domain.ResourcePool, error)
	GetForUpdate(ctx context.Context, id string) (*domain.ResourcePool, error)
	// GetPrimary returns the event's primary pool, locked when forUpdate is set.
	GetPrimary(ctx context.Context, eventID string, forUpdate bool) (*domain.ResourcePool, error)
	Update(ctx context.Context, pool *domain.ResourcePool) error

	ListWaitlist(ctx context.Context, poolID string) ([]domain.WaitlistEntry, error)
	AddWaitlistEntry(ctx context.Context, entry *domain.WaitlistEntry) error
	RemoveWaitlistEntry(ctx context.Context, poolID, guestID string) error
}

type PerkRepository interface {
	Create(ctx context.Context, perk *domain.Perk) error
	GetByID(ctx context.Context, id string) (*domain.Perk, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Perk, error)
	SetLabelPerk(ctx context.Context, lp *domain.LabelPerk) error
	// GetLabelPerk returns domain.ErrNotFound when the perk is not mapped to the label.
	GetLabelPerk(ctx context.Context, labelID, perkID string) (*domain.LabelPerk, error)
}

type BudgetRepository interface {
	SetAllowance(ctx context.Context, allowance *domain.BudgetAllowance) error
	// GetAllowance returns a zero allowance when none was configured.
	GetAllowance(ctx context.Context, eventID, labelID string) (*domain.BudgetAllowance, error)
}

type RequestRepository interface {
	Create(ctx context.Context, req *domain.GuestRequest) error
	GetByID(ctx context.Context, id string) (*domain.GuestRequest, error)
	GetForUpdate(ctx context.Context, id string) (*domain.GuestRequest, error)
	Update(ctx context.Context, req *domain.GuestRequest) error
	ListByGuest(ctx context.Context, guestID string) ([]domain.GuestRequest, error)
	ListByEvent(ctx context.Context, eventID string, status domain.RequestStatus) ([]domain.GuestRequest, error)
	CountAwaitingReview(ctx context.Context, eventID string) (int32, error)
}

type ItineraryRepository interface {
	CreateSession(ctx context.Context, session *domain.ItinerarySession) error
	GetSession(ctx context.Context, id string) (*domain.ItinerarySession, error)
	GetSessionForUpdate(ctx context.Context, id string) (*domain.ItinerarySession, error)
	UpdateSession(ctx context.Context, session *domain.ItinerarySession) error
	ListSessions(ctx context.Context, eventID string) ([]domain.ItinerarySession, error)

	ListRegistrationsByGuest(ctx context.Context, guestID string) ([]domain.ItineraryRegistration, error)
	CreateRegistration(ctx context.Context, reg *domain.ItineraryRegistration) error
	DeleteRegistration(ctx context.Context, guestID, sessionID string) error
}

type AgentRepository interface {
	Create(ctx context.Context, agent *domain.Agent) error
	GetByID(ctx context.Context, id string) (*domain.Agent, error)
	GetByEmail(ctx context.Context, email string) (*domain.Agent, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Agent, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, guestID string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, guestID string) error
}

// EffectRepository is the outbox of decided-but-undelivered effects.
type EffectRepository interface {
	Enqueue(ctx context.Context, effects []domain.Effect) error
	ListUndelivered(ctx context.Context, maxAttempts int32, limit int32) ([]domain.Effect, error)
	MarkDelivered(ctx context.Context, id string, at time.Time) error
	// MarkChannel records that one channel of a not yet delivered effect succeeded.
	MarkChannel(ctx context.Context, id string, channel domain.Channel) error
	MarkFailed(ctx context.Context, id string, reason string) error
}
