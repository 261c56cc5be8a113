package service

import (
	"context"
	"errors"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/engine"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

// allocator loads pools into InventoryLedgers under their row lock and writes
// ledger outcomes back, including the guests a release promoted.
type allocator struct {
	pools   repository.PoolRepository
	guests  repository.GuestRepository
	machine *engine.GuestStateMachine
}

// lockPrimary returns nil when the event has no primary pool.
func (a *allocator) lockPrimary(ctx context.Context, eventID string) (*engine.InventoryLedger, error) {
	pool, err := a.pools.GetPrimary(ctx, eventID, true)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a.load(ctx, pool)
}

func (a *allocator) lockPool(ctx context.Context, poolID string) (*engine.InventoryLedger, error) {
	pool, err := a.pools.GetForUpdate(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return a.load(ctx, pool)
}

func (a *allocator) load(ctx context.Context, pool *domain.ResourcePool) (*engine.InventoryLedger, error) {
	entries, err := a.pools.ListWaitlist(ctx, pool.ID)
	if err != nil {
		return nil, err
	}
	return engine.NewInventoryLedger(*pool, entries), nil
}

// commit persists the ledger's pool and waitlist changes and confirms every
// promoted guest. Promoted guests are locked here, after the pool.
func (a *allocator) commit(ctx context.Context, ledger *engine.InventoryLedger, joined, left *domain.WaitlistEntry, promotions []engine.Promotion) ([]domain.Effect, error) {
	if ledger == nil {
		return nil, nil
	}
	pool := ledger.Pool()
	if err := pool.CheckInvariants(); err != nil {
		return nil, err
	}
	if err := a.pools.Update(ctx, &pool); err != nil {
		return nil, err
	}
	if left != nil {
		if err := a.pools.RemoveWaitlistEntry(ctx, left.PoolID, left.GuestID); err != nil {
			return nil, err
		}
	}
	if joined != nil {
		if err := a.pools.AddWaitlistEntry(ctx, joined); err != nil {
			return nil, err
		}
	}

	var effects []domain.Effect
	for _, p := range promotions {
		if err := a.pools.RemoveWaitlistEntry(ctx, p.Entry.PoolID, p.Entry.GuestID); err != nil {
			return nil, err
		}
		g, err := a.guests.GetForUpdate(ctx, p.Entry.GuestID)
		if err != nil {
			return nil, err
		}
		t, err := a.machine.Promote(*g, p)
		if err != nil {
			return nil, err
		}
		if err := t.Guest.CheckInvariants(); err != nil {
			return nil, err
		}
		if err := a.guests.Update(ctx, &t.Guest); err != nil {
			return nil, err
		}
		logger.Decision("promote", engine.Granted.String(), "guestID", g.ID, "poolID", pool.ID, "seats", p.Entry.RequestedSeats)
		effects = append(effects, t.Effects...)
	}
	return effects, nil
}
