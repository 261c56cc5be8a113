package domain

import (
	"fmt"
	"time"
)

type PricingType string

const (
	PricingTypeIncluded    PricingType = "included"
	PricingTypeRequestable PricingType = "requestable"
	PricingTypeSelfPay     PricingType = "self_pay"
)

func ParsePricingType(v string) (PricingType, error) {
	switch p := PricingType(v); p {
	case PricingTypeIncluded, PricingTypeRequestable, PricingTypeSelfPay:
		return p, nil
	}
	return "", fmt.Errorf("%w: unknown pricing type %q", ErrInvalidArgument, v)
}

type RequestStatus string

const (
	RequestStatusPending           RequestStatus = "pending"
	RequestStatusApproved          RequestStatus = "approved"
	RequestStatusRejected          RequestStatus = "rejected"
	RequestStatusForwardedToClient RequestStatus = "forwarded_to_client"
)

func ParseRequestStatus(v string) (RequestStatus, error) {
	switch s := RequestStatus(v); s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusForwardedToClient:
		return s, nil
	}
	return "", fmt.Errorf("%w: unknown request status %q", ErrInvalidArgument, v)
}

// AwaitingReview reports whether a human still has to act on the request.
func (s RequestStatus) AwaitingReview() bool {
	return s == RequestStatusPending || s == RequestStatusForwardedToClient
}

type ReviewAction string

const (
	ReviewApprove ReviewAction = "approve"
	ReviewReject  ReviewAction = "reject"
	ReviewForward ReviewAction = "forward"
)

func ParseReviewAction(v string) (ReviewAction, error) {
	switch a := ReviewAction(v); a {
	case ReviewApprove, ReviewReject, ReviewForward:
		return a, nil
	}
	return "", fmt.Errorf("%w: unknown review action %q", ErrInvalidArgument, v)
}

// Perk is an add-on a guest may ask for.
type Perk struct {
	ID            string      `json:"id"`
	EventID       string      `json:"event_id"`
	Name          string      `json:"name"`
	PricingType   PricingType `json:"pricing_type"`
	UnitCostCents int64       `json:"unit_cost_cents"`
}

// LabelPerk maps a perk onto a label.
type LabelPerk struct {
	LabelID                string `json:"label_id"`
	PerkID                 string `json:"perk_id"`
	ExpenseHandledByClient bool   `json:"expense_handled_by_client"`
}

// BudgetAllowance is the discretionary ceiling of one label at one event.
type BudgetAllowance struct {
	EventID        string `json:"event_id"`
	LabelID        string `json:"label_id"`
	AllowanceCents int64  `json:"allowance_cents"`
}

// MaxRequestQuantity bounds the units one guest request may ask for.
const MaxRequestQuantity = 1000

type GuestRequest struct {
	ID                  string        `json:"id"`
	EventID             string        `json:"event_id"`
	GuestID             string        `json:"guest_id"`
	PerkID              string        `json:"perk_id"`
	Type                string        `json:"type"`
	Quantity            int           `json:"quantity"`
	BudgetConsumedCents int64         `json:"budget_consumed_cents"`
	Status              RequestStatus `json:"status"`
	ForwardedAt         *time.Time    `json:"forwarded_at,omitempty"`
	ReviewedBy          string        `json:"reviewed_by,omitempty"`
	ReviewNote          string        `json:"review_note,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

type BudgetSummary struct {
	GuestID        string `json:"guest_id"`
	AllowanceCents int64  `json:"allowance_cents"`
	UsedCents      int64  `json:"used_cents"`
	RemainingCents int64  `json:"remaining_cents"`
}
