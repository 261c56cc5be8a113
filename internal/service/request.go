package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"guestflow-backend/internal/domain"
	"guestflow-backend/internal/engine"
	"guestflow-backend/internal/logger"
	"guestflow-backend/internal/repository"
)

type requestService struct {
	tx       repository.Transactor
	guests   repository.GuestRepository
	perks    repository.PerkRepository
	budgets  repository.BudgetRepository
	requests repository.RequestRepository
	approval *engine.RequestApprovalEngine
	outbox   *outbox
	newID    IDSource
}

func NewRequestService(
	tx repository.Transactor,
	guests repository.GuestRepository,
	perks repository.PerkRepository,
	budgets repository.BudgetRepository,
	requests repository.RequestRepository,
	effects repository.EffectRepository,
	dispatcher EffectDispatcher,
) RequestService {
	return &requestService{
		tx:       tx,
		guests:   guests,
		perks:    perks,
		budgets:  budgets,
		requests: requests,
		approval: engine.NewRequestApprovalEngine(time.Now),
		outbox:   newOutbox(effects, dispatcher),
		newID:    uuid.NewString,
	}
}

// CreateRequest holds the guest's row lock while it reads the budget, so two
// requests of one guest never both spend the same remaining allowance.
func (s *requestService) CreateRequest(ctx context.Context, guestID, perkID string, quantity int) (*domain.GuestRequest, error) {
	logger.EnterMethod("requestService.CreateRequest", "guestID", guestID, "perkID", perkID, "quantity", quantity)
	if quantity <= 0 || quantity > domain.MaxRequestQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d, got %d",
			domain.ErrInvalidArgument, domain.MaxRequestQuantity, quantity)
	}
	var (
		req    domain.GuestRequest
		staged []domain.Effect
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		g, err := s.guests.GetForUpdate(ctx, guestID)
		if err != nil {
			return err
		}
		perk, err := s.perks.GetByID(ctx, perkID)
		if err != nil {
			return err
		}
		if perk.EventID != g.EventID {
			return fmt.Errorf("%w: perk %s belongs to another event", domain.ErrInvalidArgument, perk.ID)
		}
		mapping, err := s.perks.GetLabelPerk(ctx, g.LabelID, perk.ID)
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: perk %s is not offered to label %s", domain.ErrInvalidArgument, perk.ID, g.LabelID)
		}
		if err != nil {
			return err
		}
		ledger, err := s.ledger(ctx, g)
		if err != nil {
			return err
		}
		cost, err := discretionaryCost(perk, mapping, quantity)
		if err != nil {
			return err
		}

		decision, err := s.approval.Open(domain.GuestRequest{
			ID:                  s.newID(),
			EventID:             g.EventID,
			GuestID:             g.ID,
			PerkID:              perk.ID,
			Type:                string(perk.PricingType),
			Quantity:            quantity,
			BudgetConsumedCents: cost,
		}, *perk, mapping, ledger)
		if err != nil {
			return err
		}
		req = decision.Request
		if err := s.requests.Create(ctx, &req); err != nil {
			return err
		}
		logger.Decision("perk_request", string(req.Status), "guestID", g.ID, "requestID", req.ID,
			"cost", req.BudgetConsumedCents, "remaining", ledger.Remaining())
		staged, err = s.outbox.stage(ctx, decision.Effects)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("requestService.CreateRequest", err, "guestID", guestID)
		return nil, err
	}
	s.outbox.flush(ctx, staged)
	logger.ExitMethod("requestService.CreateRequest", "requestID", req.ID, "status", req.Status)
	return &req, nil
}

func (s *requestService) GetRequest(ctx context.Context, requestID string) (*domain.GuestRequest, error) {
	return s.requests.GetByID(ctx, requestID)
}

func (s *requestService) ReviewRequest(ctx context.Context, requestID string, action domain.ReviewAction, reviewer, note string) (*domain.GuestRequest, error) {
	return s.review(ctx, "", requestID, action, reviewer, note)
}

// review locks the owning guest before the request, the same order CreateRequest
// uses. A non-empty eventID restricts the review to that event.
func (s *requestService) review(ctx context.Context, eventID, requestID string, action domain.ReviewAction, reviewer, note string) (*domain.GuestRequest, error) {
	logger.EnterMethod("requestService.review", "requestID", requestID, "action", action, "reviewer", reviewer)
	var (
		req    domain.GuestRequest
		staged []domain.Effect
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		peek, err := s.requests.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if eventID != "" && peek.EventID != eventID {
			return fmt.Errorf("%w: request %s belongs to another event", domain.ErrInvalidArgument, requestID)
		}
		if _, err := s.guests.GetForUpdate(ctx, peek.GuestID); err != nil {
			return err
		}
		current, err := s.requests.GetForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		decision, err := s.approval.Review(*current, action, reviewer, note)
		if err != nil {
			return err
		}
		req = decision.Request
		if err := s.requests.Update(ctx, &req); err != nil {
			return err
		}
		logger.Decision("perk_review", string(req.Status), "requestID", req.ID, "reviewer", reviewer)
		staged, err = s.outbox.stage(ctx, decision.Effects)
		return err
	})
	if err != nil {
		logger.ExitMethodWithError("requestService.review", err, "requestID", requestID)
		return nil, err
	}
	s.outbox.flush(ctx, staged)
	logger.ExitMethod("requestService.review", "requestID", requestID, "status", req.Status)
	return &req, nil
}

func (s *requestService) BulkApprove(ctx context.Context, eventID string, requestIDs []string, reviewer string) engine.BulkResult {
	logger.EnterMethod("requestService.BulkApprove", "eventID", eventID, "count", len(requestIDs))
	res := engine.BulkApprove(requestIDs, func(id string) error {
		_, err := s.review(ctx, eventID, id, domain.ReviewApprove, reviewer, "")
		return err
	})
	logger.ExitMethod("requestService.BulkApprove", "eventID", eventID, "approved", res.Approved, "failed", res.Failed)
	return res
}

func (s *requestService) ListRequests(ctx context.Context, eventID string, status domain.RequestStatus) ([]domain.GuestRequest, error) {
	if status != "" {
		if _, err := domain.ParseRequestStatus(string(status)); err != nil {
			return nil, err
		}
	}
	return s.requests.ListByEvent(ctx, eventID, status)
}

func (s *requestService) GetBudgetSummary(ctx context.Context, guestID string) (*domain.BudgetSummary, error) {
	g, err := s.guests.GetByID(ctx, guestID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.ledger(ctx, g)
	if err != nil {
		return nil, err
	}
	summary := ledger.Summary(g.ID)
	return &summary, nil
}

func (s *requestService) ledger(ctx context.Context, g *domain.Guest) (*engine.BudgetLedger, error) {
	allowance, err := s.budgets.GetAllowance(ctx, g.EventID, g.LabelID)
	if err != nil {
		return nil, err
	}
	existing, err := s.requests.ListByGuest(ctx, g.ID)
	if err != nil {
		return nil, err
	}
	return engine.NewBudgetLedger(*allowance, existing), nil
}

// discretionaryCost is what a request draws from the label allowance. Only
// requestable perks paid for by the event do; included, client-covered and
// self-paid perks cost the allowance nothing.
func discretionaryCost(perk *domain.Perk, mapping *domain.LabelPerk, quantity int) (int64, error) {
	if perk.PricingType != domain.PricingTypeRequestable || mapping.ExpenseHandledByClient {
		return 0, nil
	}
	if perk.UnitCostCents > 0 && int64(quantity) > math.MaxInt64/perk.UnitCostCents {
		return 0, fmt.Errorf("%w: %d x %d cents overflows", domain.ErrInvalidArgument, quantity, perk.UnitCostCents)
	}
	return perk.UnitCostCents * int64(quantity), nil
}
