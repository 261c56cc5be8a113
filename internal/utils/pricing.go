package utils

import (
	"fmt"
	"time"

	"guestflow-backend/internal/domain"
)

// RetailMultiplier is the display heuristic for what a guest would pay booking
// the same unit on their own. It never feeds allocation or budget decisions.
const RetailMultiplier = 2

// RateQuote is the guest-facing price display for one pool.
type RateQuote struct {
	PoolID               string `json:"pool_id"`
	NegotiatedRateCents  int64  `json:"negotiated_rate_cents"`
	EstimatedRetailCents int64  `json:"estimated_retail_cents"`
	Nights               int    `json:"nights"`
	Units                int    `json:"units"`
	GroupSavingsCents    int64  `json:"group_savings_cents"`
}

const dateLayout = "2006-01-02"

// ParseDate converts a yyyy-mm-dd string into a UTC midnight.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", dateStr)
	}
	return t, nil
}

// NightsBetween counts calendar nights from check-in to check-out.
func NightsBetween(checkIn, checkOut time.Time) (int, error) {
	in := truncateDay(checkIn)
	out := truncateDay(checkOut)
	if out.Before(in) {
		return 0, fmt.Errorf("check-out %s is before check-in %s", out.Format(dateLayout), in.Format(dateLayout))
	}
	return int(out.Sub(in).Hours() / 24), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func EstimatedRetailRate(negotiatedCents int64) int64 {
	return negotiatedCents * RetailMultiplier
}

// GroupSavings is the retail estimate minus the negotiated rate over the stay.
func GroupSavings(negotiatedCents int64, nights, units int) int64 {
	if nights <= 0 || units <= 0 {
		return 0
	}
	return (EstimatedRetailRate(negotiatedCents) - negotiatedCents) * int64(nights) * int64(units)
}

// QuotePool prices units of the pool for its validity window. A pool without a
// window is quoted for one night.
func QuotePool(pool *domain.ResourcePool, units int) (RateQuote, error) {
	if units < 1 {
		units = 1
	}
	nights := 1
	if pool.ValidFrom != nil && pool.ValidTo != nil {
		n, err := NightsBetween(*pool.ValidFrom, *pool.ValidTo)
		if err != nil {
			return RateQuote{}, err
		}
		nights = n
	}
	return RateQuote{
		PoolID:               pool.ID,
		NegotiatedRateCents:  pool.NegotiatedRateCents,
		EstimatedRetailCents: EstimatedRetailRate(pool.NegotiatedRateCents),
		Nights:               nights,
		Units:                units,
		GroupSavingsCents:    GroupSavings(pool.NegotiatedRateCents, nights, units),
	}, nil
}
