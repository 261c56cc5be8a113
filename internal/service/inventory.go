package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/engine"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

type inventoryService struct {
	tx     repository.Transactor
	events repository.EventRepository
	pools  repository.PoolRepository
	alloc  *allocator
	outbox *outbox
	newID  IDSource
}

func NewInventoryService(
	tx repository.Transactor,
	events repository.EventRepository,
	pools repository.PoolRepository,
	guests repository.GuestRepository,
	effects repository.EffectRepository,
	dispatcher EffectDispatcher,
) InventoryService {
	return &inventoryService{
		tx:     tx,
		events: events,
		pools:  pools,
		alloc: &allocator{
			pools:   pools,
			guests:  guests,
			machine: engine.NewGuestStateMachine(time.Now, uuid.NewString),
		},
		outbox: newOutbox(effects, dispatcher),
		newID:  uuid.NewString,
	}
}

func (s *inventoryService) CreatePool(ctx context.Context, pool *domain.ResourcePool) error {
	logger.EnterMethod("inventoryService.CreatePool", "eventID", pool.EventID, "kind", pool.Kind)
	if strings.TrimSpace(pool.Name) == "" {
		return fmt.Errorf("%w: pool name is required", domain.ErrInvalidArgument)
	}
	if _, err := domain.ParsePoolKind(string(pool.Kind)); err != nil {
		return err
	}
	if pool.Blocked < 0 || pool.NegotiatedRateCents < 0 {
		return fmt.Errorf("%w: blocked units and rate must not be negative", domain.ErrInvalidArgument)
	}
	if pool.ValidFrom != nil && pool.ValidTo != nil && !pool.ValidFrom.Before(*pool.ValidTo) {
		return fmt.Errorf("%w: validity window ends before it starts", domain.ErrInvalidArgument)
	}
	if pool.ID == "" {
		pool.ID = s.newID()
	}
	pool.Confirmed = 0

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.events.GetByID(ctx, pool.EventID); err != nil {
			return err
		}
		if pool.IsPrimary {
			_, err := s.pools.GetPrimary(ctx, pool.EventID, false)
			if err == nil {
				return fmt.Errorf("%w: event %s already has a primary pool", domain.ErrInvalidArgument, pool.EventID)
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return err
			}
		}
		return s.pools.Create(ctx, pool)
	})
	if err != nil {
		logger.ExitMethodWithError("inventoryService.CreatePool", err, "eventID", pool.EventID)
		return err
	}
	logger.ExitMethod("inventoryService.CreatePool", "poolID", pool.ID)
	return nil
}

func (s *inventoryService) GetPool(ctx context.Context, poolID string) (*domain.ResourcePool, error) {
	return s.pools.GetByID(ctx, poolID)
}

func (s *inventoryService) GetWaitlist(ctx context.Context, poolID string) ([]WaitlistPosition, error) {
	if _, err := s.pools.GetByID(ctx, poolID); err != nil {
		return nil, err
	}
	entries, err := s.pools.ListWaitlist(ctx, poolID)
	if err != nil {
		return nil, err
	}
	ordered := engine.NewWaitlistQueue(entries).Entries()
	out := make([]WaitlistPosition, 0, len(ordered))
	for i, e := range ordered {
		out = append(out, WaitlistPosition{Entry: e, Position: i + 1})
	}
	return out, nil
}

func (s *inventoryService) AdjustBlocked(ctx context.Context, poolID string, blocked int) (*domain.ResourcePool, error) {
	logger.EnterMethod("inventoryService.AdjustBlocked", "poolID", poolID, "blocked", blocked)
	pool, err := s.apply(ctx, poolID, func(l *engine.InventoryLedger) ([]engine.Promotion, error) {
		return l.SetBlocked(blocked)
	})
	if err != nil {
		logger.ExitMethodWithError("inventoryService.AdjustBlocked", err, "poolID", poolID)
		return nil, err
	}
	logger.ExitMethod("inventoryService.AdjustBlocked", "poolID", poolID, "available", pool.Available())
	return pool, nil
}

func (s *inventoryService) Release(ctx context.Context, poolID string, units int) (*domain.ResourcePool, error) {
	logger.EnterMethod("inventoryService.Release", "poolID", poolID, "units", units)
	pool, err := s.apply(ctx, poolID, func(l *engine.InventoryLedger) ([]engine.Promotion, error) {
		return l.Release(units)
	})
	if err != nil {
		logger.ExitMethodWithError("inventoryService.Release", err, "poolID", poolID)
		return nil, err
	}
	logger.ExitMethod("inventoryService.Release", "poolID", poolID, "available", pool.Available())
	return pool, nil
}

// apply runs op against the locked pool and persists the result together with
// any promotions it produced.
func (s *inventoryService) apply(ctx context.Context, poolID string, op func(*engine.InventoryLedger) ([]engine.Promotion, error)) (*domain.ResourcePool, error) {
	var (
		pool   domain.ResourcePool
		staged []domain.Effect
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		ledger, err := s.alloc.lockPool(ctx, poolID)
		if err != nil {
			return err
		}
		promotions, err := op(ledger)
		if err != nil {
			return err
		}
		effects, err := s.alloc.commit(ctx, ledger, nil, nil, promotions)
		if err != nil {
			return err
		}
		pool = ledger.Pool()
		staged, err = s.outbox.stage(ctx, effects)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.outbox.flush(ctx, staged)
	return &pool, nil
}
