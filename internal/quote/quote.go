package quote

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNoActiveRate indicates the brand has no enabled rate entry.
	ErrNoActiveRate = errors.New("quote: no active rate for brand")
	// ErrStaleQuote indicates the quote is unknown or past its TTL.
	ErrStaleQuote = errors.New("quote: stale or unknown quote")
)

// Quote is an immutable snapshot of an effective rate issued for one sell
// request. Payout calculations use the snapshot, never live rates, so the
// price a user saw is the price they are paid ("rate lock").
type Quote struct {
	ID             uuid.UUID
	Brand          string
	RatePct        int64
	CoinPriceIndex int64
	EffectiveRate  decimal.Decimal
	TierLabel      string
	CreatedAt      time.Time
}

var hundred = decimal.NewFromInt(100)

// EffectiveRate scales a brand's stored base rate by the global coin-price
// index: ratePct * index / 100. An index of 100 is the baseline; above 100
// increases payout, below decreases it.
func EffectiveRate(ratePct, coinPriceIndex int64) decimal.Decimal {
	return decimal.NewFromInt(ratePct).
		Mul(decimal.NewFromInt(coinPriceIndex)).
		Div(hundred)
}

// Payout converts an amount in source-currency cents to target-currency
// cents using the quote's locked rate, rounded half up.
func (q Quote) Payout(amountCents int64) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(q.EffectiveRate).
		Round(0).
		IntPart()
}
