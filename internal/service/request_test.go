package service_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestflow-backend/internal/domain"
)

// seedPerks gives the vip label a 5000 allowance and maps four perks onto it.
func seedPerks(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	perks := f.store.Perks()
	for _, p := range []domain.Perk{
		{ID: "spa", EventID: "evt-1", Name: "Spa", PricingType: domain.PricingTypeRequestable, UnitCostCents: 1500},
		{ID: "breakfast", EventID: "evt-1", Name: "Breakfast", PricingType: domain.PricingTypeIncluded, UnitCostCents: 2000},
		{ID: "minibar", EventID: "evt-1", Name: "Minibar", PricingType: domain.PricingTypeSelfPay, UnitCostCents: 800},
		{ID: "car", EventID: "evt-1", Name: "Car", PricingType: domain.PricingTypeRequestable, UnitCostCents: 9000},
	} {
		require.NoError(t, perks.Create(ctx, &p))
	}
	require.NoError(t, perks.SetLabelPerk(ctx, &domain.LabelPerk{LabelID: "vip", PerkID: "spa"}))
	require.NoError(t, perks.SetLabelPerk(ctx, &domain.LabelPerk{LabelID: "vip", PerkID: "breakfast"}))
	require.NoError(t, perks.SetLabelPerk(ctx, &domain.LabelPerk{LabelID: "vip", PerkID: "minibar"}))
	require.NoError(t, perks.SetLabelPerk(ctx, &domain.LabelPerk{LabelID: "vip", PerkID: "car", ExpenseHandledByClient: true}))
	require.NoError(t, f.store.Budgets().SetAllowance(ctx, &domain.BudgetAllowance{EventID: "evt-1", LabelID: "vip", AllowanceCents: 5000}))
}

func TestRequestService_CreateRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	seedPerks(t, f)
	g := f.invite(t, "ana", "vip", 1)

	t.Run("Within budget is approved", func(t *testing.T) {
		req, err := f.requests.CreateRequest(ctx, g.ID, "spa", 2)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusApproved, req.Status)
		assert.Equal(t, int64(3000), req.BudgetConsumedCents)
	})

	t.Run("Over budget waits for review", func(t *testing.T) {
		req, err := f.requests.CreateRequest(ctx, g.ID, "spa", 2)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusPending, req.Status)
	})

	t.Run("Included ignores budget", func(t *testing.T) {
		req, err := f.requests.CreateRequest(ctx, g.ID, "breakfast", 3)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusApproved, req.Status)
		assert.Zero(t, req.BudgetConsumedCents)
	})

	t.Run("Client covered ignores budget", func(t *testing.T) {
		req, err := f.requests.CreateRequest(ctx, g.ID, "car", 1)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusApproved, req.Status)
	})

	t.Run("Self pay always reviewed", func(t *testing.T) {
		req, err := f.requests.CreateRequest(ctx, g.ID, "minibar", 1)
		require.NoError(t, err)
		assert.Equal(t, domain.RequestStatusPending, req.Status)
	})

	t.Run("Not offered to the label", func(t *testing.T) {
		other := f.invite(t, "ben", "family", 1)
		_, err := f.requests.CreateRequest(ctx, other.ID, "spa", 1)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Zero quantity", func(t *testing.T) {
		_, err := f.requests.CreateRequest(ctx, g.ID, "spa", 0)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Quantity above the limit", func(t *testing.T) {
		_, err := f.requests.CreateRequest(ctx, g.ID, "spa", math.MaxInt64/1500+1)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		_, err = f.requests.CreateRequest(ctx, g.ID, "spa", domain.MaxRequestQuantity+1)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Cost overflow", func(t *testing.T) {
		perks := f.store.Perks()
		require.NoError(t, perks.Create(ctx, &domain.Perk{ID: "jet", EventID: "evt-1", Name: "Jet", PricingType: domain.PricingTypeRequestable, UnitCostCents: math.MaxInt64/2 + 1}))
		require.NoError(t, perks.SetLabelPerk(ctx, &domain.LabelPerk{LabelID: "vip", PerkID: "jet"}))

		_, err := f.requests.CreateRequest(ctx, g.ID, "jet", 2)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("Budget summary", func(t *testing.T) {
		summary, err := f.requests.GetBudgetSummary(ctx, g.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(5000), summary.AllowanceCents)
		assert.Equal(t, int64(3000), summary.UsedCents, "only requestable perks draw on the allowance")
		assert.Equal(t, int64(2000), summary.RemainingCents)
	})
}

func TestRequestService_ReviewRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	seedPerks(t, f)
	g := f.invite(t, "ana", "vip", 1)

	req, err := f.requests.CreateRequest(ctx, g.ID, "minibar", 1)
	require.NoError(t, err)

	forwarded, err := f.requests.ReviewRequest(ctx, req.ID, domain.ReviewForward, "agent-1", "ask the hosts")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusForwardedToClient, forwarded.Status)
	assert.NotNil(t, forwarded.ForwardedAt)

	_, err = f.requests.ReviewRequest(ctx, req.ID, domain.ReviewForward, "agent-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	approved, err := f.requests.ReviewRequest(ctx, req.ID, domain.ReviewApprove, "agent-1", "hosts agreed")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusApproved, approved.Status)
	assert.Equal(t, "hosts agreed", approved.ReviewNote)

	_, err = f.requests.ReviewRequest(ctx, req.ID, domain.ReviewReject, "agent-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	assert.Contains(t, kinds(f.dispatcher.dispatched()), domain.EffectRequestForwarded)
}

func TestRequestService_BulkApprove(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	seedPerks(t, f)
	g := f.invite(t, "ana", "vip", 1)

	var ids []string
	for range 3 {
		req, err := f.requests.CreateRequest(ctx, g.ID, "minibar", 1)
		require.NoError(t, err)
		ids = append(ids, req.ID)
	}
	_, err := f.requests.ReviewRequest(ctx, ids[1], domain.ReviewReject, "agent-1", "")
	require.NoError(t, err)

	res := f.requests.BulkApprove(ctx, "evt-1", append(ids, "missing"), "agent-1")
	assert.Equal(t, 2, res.Approved)
	assert.Equal(t, 2, res.Failed)
	assert.ErrorIs(t, res.Errors[ids[1]], domain.ErrInvalidTransition)
	assert.ErrorIs(t, res.Errors["missing"], domain.ErrNotFound)

	approved, err := f.requests.ListRequests(ctx, "evt-1", domain.RequestStatusApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 2)

	t.Run("Other event", func(t *testing.T) {
		res := f.requests.BulkApprove(ctx, "evt-2", ids[:1], "agent-1")
		assert.Equal(t, 1, res.Failed)
		assert.ErrorIs(t, res.Errors[ids[0]], domain.ErrInvalidArgument)
	})
}
