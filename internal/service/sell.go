package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"giftvault/internal/ledger"
	"giftvault/internal/quote"
	"giftvault/internal/rates"
)

var hundred = decimal.NewFromInt(100)

// Sell orchestrates the gift-card-to-cash flow: quote issuance, locked
// payout, and the local transaction record.
type Sell struct {
	engine *quote.Engine
	tables *rates.Store
	log    *ledger.Ledger
	logger zerolog.Logger
}

// NewSell wires the sell service.
func NewSell(engine *quote.Engine, tables *rates.Store, log *ledger.Ledger, logger zerolog.Logger) *Sell {
	return &Sell{
		engine: engine,
		tables: tables,
		log:    log,
		logger: logger.With().Str("component", "sell").Logger(),
	}
}

// Quote issues a locked quote for selling amountCents worth of the brand.
func (s *Sell) Quote(ctx context.Context, brand string, amountCents int64) (quote.Quote, error) {
	q, err := s.engine.Generate(ctx, brand, amountCents)
	if err != nil {
		return quote.Quote{}, err
	}
	quotesIssuedTotal.Inc()
	return q, nil
}

// Redeem computes the locked payout for a quote and records the sale in the
// local ledger. Ledger persistence failures never fail the redemption.
func (s *Sell) Redeem(ctx context.Context, quoteID uuid.UUID, amountCents int64) (int64, error) {
	payoutCents, err := s.engine.Payout(ctx, quoteID, amountCents)
	if err != nil {
		return 0, err
	}
	payoutsComputedTotal.Inc()

	entry := s.log.Append(ledger.Entry{
		Type:        ledger.TypeSell,
		Amount:      decimal.NewFromInt(payoutCents).Div(hundred),
		Currency:    "NGN",
		Description: fmt.Sprintf("gift card sale, quote %s", quoteID),
		Status:      "completed",
		Meta:        &ledger.Metadata{Direction: ledger.DirectionIn},
	})

	s.logger.Info().
		Str("quote_id", quoteID.String()).
		Int64("amount_cents", amountCents).
		Int64("payout_cents", payoutCents).
		Str("ledger_id", entry.ID).
		Msg("sale redeemed")

	return payoutCents, nil
}

// EstimateOffer is the client-side calculator: it matches the amount
// against the brand's effective table without touching the quote service.
// The returned payout is indicative, not locked.
type EstimateOffer struct {
	Matched rates.Matched
	Payout  decimal.Decimal
}

// Estimate resolves an indicative offer for the amount, or false when no
// tier covers it.
func (s *Sell) Estimate(brand string, amount decimal.Decimal) (EstimateOffer, bool) {
	m, ok := rates.Match(amount, s.tables.EffectiveTable(brand))
	if !ok {
		return EstimateOffer{}, false
	}
	return EstimateOffer{Matched: m, Payout: amount.Mul(m.Rate)}, true
}
