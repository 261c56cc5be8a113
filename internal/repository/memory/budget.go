package memory

import (
	"cmp"
	"context"
	"fmt"
	"time"

	"guestflow-backend/internal/domain"
)

type perkRepo struct{ s *Store }

func (r perkRepo) Create(ctx context.Context, p *domain.Perk) error {
	if !insert(ctx, r.s, r.s.perks, p.ID, *p) {
		return fmt.Errorf("%w: perk %s exists", domain.ErrInvalidArgument, p.ID)
	}
	return nil
}

func (r perkRepo) GetByID(ctx context.Context, id string) (*domain.Perk, error) {
	p, ok := get(r.s, r.s.perks, id)
	if !ok {
		return nil, fmt.Errorf("%w: perk %s", domain.ErrNotFound, id)
	}
	return &p, nil
}

func (r perkRepo) ListByEvent(ctx context.Context, eventID string) ([]domain.Perk, error) {
	return filter(r.s, r.s.perks,
		func(p domain.Perk) bool { return p.EventID == eventID },
		func(a, b domain.Perk) int { return byString(a.Name, b.Name) }), nil
}

func (r perkRepo) SetLabelPerk(ctx context.Context, lp *domain.LabelPerk) error {
	put(ctx, r.s, r.s.labelPerks, pairKey(lp.LabelID, lp.PerkID), *lp)
	return nil
}

func (r perkRepo) GetLabelPerk(ctx context.Context, labelID, perkID string) (*domain.LabelPerk, error) {
	lp, ok := get(r.s, r.s.labelPerks, pairKey(labelID, perkID))
	if !ok {
		return nil, fmt.Errorf("%w: perk mapping %s/%s", domain.ErrNotFound, labelID, perkID)
	}
	return &lp, nil
}

type budgetRepo struct{ s *Store }

func (r budgetRepo) SetAllowance(ctx context.Context, a *domain.BudgetAllowance) error {
	put(ctx, r.s, r.s.allowances, pairKey(a.EventID, a.LabelID), *a)
	return nil
}

func (r budgetRepo) GetAllowance(ctx context.Context, eventID, labelID string) (*domain.BudgetAllowance, error) {
	a, ok := get(r.s, r.s.allowances, pairKey(eventID, labelID))
	if !ok {
		return &domain.BudgetAllowance{EventID: eventID, LabelID: labelID}, nil
	}
	return &a, nil
}

type requestRepo struct{ s *Store }

func (r requestRepo) Create(ctx context.Context, req *domain.GuestRequest) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
		req.UpdatedAt = req.CreatedAt
	}
	if !insert(ctx, r.s, r.s.requests, req.ID, *req) {
		return fmt.Errorf("%w: request %s exists", domain.ErrInvalidArgument, req.ID)
	}
	return nil
}

func (r requestRepo) GetByID(ctx context.Context, id string) (*domain.GuestRequest, error) {
	req, ok := get(r.s, r.s.requests, id)
	if !ok {
		return nil, fmt.Errorf("%w: request %s", domain.ErrNotFound, id)
	}
	return &req, nil
}

func (r requestRepo) GetForUpdate(ctx context.Context, id string) (*domain.GuestRequest, error) {
	r.s.lockRow(ctx, "request:"+id)
	return r.GetByID(ctx, id)
}

func (r requestRepo) Update(ctx context.Context, req *domain.GuestRequest) error {
	if _, ok := get(r.s, r.s.requests, req.ID); !ok {
		return fmt.Errorf("%w: request %s", domain.ErrNotFound, req.ID)
	}
	put(ctx, r.s, r.s.requests, req.ID, *req)
	return nil
}

func (r requestRepo) ListByGuest(ctx context.Context, guestID string) ([]domain.GuestRequest, error) {
	return filter(r.s, r.s.requests,
		func(req domain.GuestRequest) bool { return req.GuestID == guestID },
		requestOrder), nil
}

func (r requestRepo) ListByEvent(ctx context.Context, eventID string, status domain.RequestStatus) ([]domain.GuestRequest, error) {
	return filter(r.s, r.s.requests,
		func(req domain.GuestRequest) bool {
			return req.EventID == eventID && (status == "" || req.Status == status)
		},
		requestOrder), nil
}

func (r requestRepo) CountAwaitingReview(ctx context.Context, eventID string) (int32, error) {
	reqs := filter(r.s, r.s.requests,
		func(req domain.GuestRequest) bool { return req.EventID == eventID && req.Status.AwaitingReview() },
		requestOrder)
	return int32(len(reqs)), nil
}

func requestOrder(a, b domain.GuestRequest) int {
	return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), byString(a.ID, b.ID))
}
