package engine

import "guestflow-backend/internal/domain"

// BudgetLedger derives discretionary spend from a guest's requests.
type BudgetLedger struct {
	allowance domain.BudgetAllowance
	requests  []domain.GuestRequest
}

func NewBudgetLedger(allowance domain.BudgetAllowance, requests []domain.GuestRequest) *BudgetLedger {
	return &BudgetLedger{allowance: allowance, requests: requests}
}

// UsedBudget sums budget consumed by approved requests only.
func (b *BudgetLedger) UsedBudget() int64 {
	return UsedBudget(b.requests)
}

func (b *BudgetLedger) Allowance() int64 {
	return b.allowance.AllowanceCents
}

// Remaining may be negative: the allowance is a soft ceiling.
func (b *BudgetLedger) Remaining() int64 {
	return b.allowance.AllowanceCents - b.UsedBudget()
}

func (b *BudgetLedger) Fits(cost int64) bool {
	return cost <= b.Remaining()
}

func (b *BudgetLedger) Summary(guestID string) domain.BudgetSummary {
	used := b.UsedBudget()
	return domain.BudgetSummary{
		GuestID:        guestID,
		AllowanceCents: b.allowance.AllowanceCents,
		UsedCents:      used,
		RemainingCents: b.allowance.AllowanceCents - used,
	}
}

func UsedBudget(requests []domain.GuestRequest) int64 {
	var used int64
	for _, r := range requests {
		if r.Status == domain.RequestStatusApproved {
			used += r.BudgetConsumedCents
		}
	}
	return used
}
