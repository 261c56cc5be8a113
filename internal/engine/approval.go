package engine

import (
	"fmt"
	"time"

	"guestflow-backend/internal/domain"
)

// RequestApprovalEngine decides perk request statuses.
type RequestApprovalEngine struct {
	now func() time.Time
}

func NewRequestApprovalEngine(now func() time.Time) *RequestApprovalEngine {
	if now == nil {
		now = time.Now
	}
	return &RequestApprovalEngine{now: now}
}

// DecideInitialStatus never rejects. Pre-committed costs are approved outright,
// discretionary ones are approved while they fit the remaining allowance, and
// everything else waits for a human.
func (e *RequestApprovalEngine) DecideInitialStatus(perk domain.Perk, mapping *domain.LabelPerk, budget *BudgetLedger, cost int64) (domain.RequestStatus, error) {
	if mapping != nil && mapping.ExpenseHandledByClient {
		return domain.RequestStatusApproved, nil
	}
	switch perk.PricingType {
	case domain.PricingTypeIncluded:
		return domain.RequestStatusApproved, nil
	case domain.PricingTypeRequestable:
		if budget.Fits(cost) {
			return domain.RequestStatusApproved, nil
		}
		return domain.RequestStatusPending, nil
	case domain.PricingTypeSelfPay:
		return domain.RequestStatusPending, nil
	default:
		return "", fmt.Errorf("%w: unknown pricing type %q on perk %s", domain.ErrInvalidArgument, perk.PricingType, perk.ID)
	}
}

// RequestDecision is a request together with the effects of its latest change.
type RequestDecision struct {
	Request domain.GuestRequest
	Effects []domain.Effect
}

// Open builds a new request whose status is decided by DecideInitialStatus.
func (e *RequestApprovalEngine) Open(req domain.GuestRequest, perk domain.Perk, mapping *domain.LabelPerk, budget *BudgetLedger) (RequestDecision, error) {
	if req.Quantity <= 0 || req.Quantity > domain.MaxRequestQuantity {
		return RequestDecision{}, fmt.Errorf("%w: quantity must be between 1 and %d, got %d",
			domain.ErrInvalidArgument, domain.MaxRequestQuantity, req.Quantity)
	}
	if req.BudgetConsumedCents < 0 {
		return RequestDecision{}, fmt.Errorf("%w: negative cost", domain.ErrInvalidArgument)
	}
	status, err := e.DecideInitialStatus(perk, mapping, budget, req.BudgetConsumedCents)
	if err != nil {
		return RequestDecision{}, err
	}
	now := e.now()
	req.Status = status
	req.CreatedAt = now
	req.UpdatedAt = now

	kind := domain.EffectRequestPendingReview
	if status == domain.RequestStatusApproved {
		kind = domain.EffectRequestApproved
	}
	return RequestDecision{Request: req, Effects: []domain.Effect{requestEffect(kind, req)}}, nil
}

// Review applies one human decision. Pending requests may be approved, rejected
// or forwarded once to the client; forwarded requests may only be resolved.
func (e *RequestApprovalEngine) Review(req domain.GuestRequest, action domain.ReviewAction, reviewer, note string) (RequestDecision, error) {
	if !req.Status.AwaitingReview() {
		return RequestDecision{}, fmt.Errorf("%w: request %s already %s", domain.ErrInvalidTransition, req.ID, req.Status)
	}
	now := e.now()
	var kind domain.EffectKind

	switch action {
	case domain.ReviewApprove:
		req.Status = domain.RequestStatusApproved
		kind = domain.EffectRequestApproved
	case domain.ReviewReject:
		req.Status = domain.RequestStatusRejected
		kind = domain.EffectRequestRejected
	case domain.ReviewForward:
		if req.Status == domain.RequestStatusForwardedToClient || req.ForwardedAt != nil {
			return RequestDecision{}, fmt.Errorf("%w: request %s was already forwarded", domain.ErrInvalidTransition, req.ID)
		}
		req.Status = domain.RequestStatusForwardedToClient
		req.ForwardedAt = &now
		kind = domain.EffectRequestForwarded
	default:
		return RequestDecision{}, fmt.Errorf("%w: unknown review action %q", domain.ErrInvalidArgument, action)
	}

	req.ReviewedBy = reviewer
	req.ReviewNote = note
	req.UpdatedAt = now
	return RequestDecision{Request: req, Effects: []domain.Effect{requestEffect(kind, req)}}, nil
}

// BulkResult counts per-request outcomes of a batch; one failure never aborts the rest.
type BulkResult struct {
	Approved int
	Failed   int
	Errors   map[string]error
}

func (r *BulkResult) record(requestID string, err error) {
	if err == nil {
		r.Approved++
		return
	}
	r.Failed++
	if r.Errors == nil {
		r.Errors = make(map[string]error)
	}
	r.Errors[requestID] = err
}

// BulkApprove runs approve on every id independently.
func BulkApprove(ids []string, approve func(id string) error) BulkResult {
	var res BulkResult
	for _, id := range ids {
		res.record(id, approve(id))
	}
	return res
}

func requestEffect(kind domain.EffectKind, req domain.GuestRequest) domain.Effect {
	return domain.Effect{
		Kind:      kind,
		EventID:   req.EventID,
		GuestID:   req.GuestID,
		RequestID: req.ID,
	}
}
