package memory

import (
	"context"
	"fmt"
	"time"

	"guestflow-backend/internal/domain"
)

type poolRepo struct{ s *Store }

// Create enforces one primary pool per event at insert time, like the
// partial unique index on PostgreSQL.
func (r poolRepo) Create(ctx context.Context, p *domain.ResourcePool) error {
	p.UpdatedAt = time.Now().UTC()
	r.s.mu.Lock()
	if _, ok := r.s.pools[p.ID]; ok {
		r.s.mu.Unlock()
		return fmt.Errorf("%w: pool %s exists", domain.ErrInvalidArgument, p.ID)
	}
	if p.IsPrimary {
		for _, other := range r.s.pools {
			if other.EventID == p.EventID && other.IsPrimary {
				r.s.mu.Unlock()
				return fmt.Errorf("%w: event %s already has a primary pool", domain.ErrInvalidArgument, p.EventID)
			}
		}
	}
	r.s.pools[p.ID] = *p
	r.s.mu.Unlock()

	if t := txFrom(ctx); t != nil {
		id := p.ID
		t.undo = append(t.undo, func() { delete(r.s.pools, id) })
	}
	return nil
}

func (r poolRepo) GetByID(ctx context.Context, id string) (*domain.ResourcePool, error) {
	p, ok := get(r.s, r.s.pools, id)
	if !ok {
		return nil, fmt.Errorf("%w: pool %s", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (r poolRepo) GetForUpdate(ctx context.Context, id string) (*domain.ResourcePool, error) {
	r.s.lockRow(ctx, "pool:"+id)
	return r.GetByID(ctx, id)
}

func (r poolRepo) GetPrimary(ctx context.Context, eventID string, forUpdate bool) (*domain.ResourcePool, error) {
	primaries := filter(r.s, r.s.pools,
		func(p domain.ResourcePool) bool { return p.EventID == eventID && p.IsPrimary },
		func(a, b domain.ResourcePool) int { return byString(a.ID, b.ID) })
	if len(primaries) == 0 {
		return nil, fmt.Errorf("%w: primary pool of event %s", domain.ErrNotFound, eventID)
	}
	if forUpdate {
		return r.GetForUpdate(ctx, primaries[0].ID)
	}
	return &primaries[0], nil
}

func (r poolRepo) Update(ctx context.Context, p *domain.ResourcePool) error {
	if _, ok := get(r.s, r.s.pools, p.ID); !ok {
		return fmt.Errorf("%w: pool %s", domain.ErrNotFound, p.ID)
	}
	p.UpdatedAt = time.Now().UTC()
	put(ctx, r.s, r.s.pools, p.ID, *p)
	return nil
}

func (r poolRepo) ListWaitlist(ctx context.Context, poolID string) ([]domain.WaitlistEntry, error) {
	return filter(r.s, r.s.waitlist,
		func(e domain.WaitlistEntry) bool { return e.PoolID == poolID },
		func(a, b domain.WaitlistEntry) int {
			switch {
			case a.Before(b):
				return -1
			case b.Before(a):
				return 1
			}
			return 0
		}), nil
}

func (r poolRepo) AddWaitlistEntry(ctx context.Context, e *domain.WaitlistEntry) error {
	e.Seq = r.s.waitlistSeq.Add(1)
	if !insert(ctx, r.s, r.s.waitlist, pairKey(e.PoolID, e.GuestID), *e) {
		return fmt.Errorf("%w: guest %s in pool %s", domain.ErrAlreadyQueued, e.GuestID, e.PoolID)
	}
	return nil
}

func (r poolRepo) RemoveWaitlistEntry(ctx context.Context, poolID, guestID string) error {
	if !remove(ctx, r.s, r.s.waitlist, pairKey(poolID, guestID)) {
		return fmt.Errorf("%w: waitlist entry for guest %s", domain.ErrNotFound, guestID)
	}
	return nil
}
