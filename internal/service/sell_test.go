package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftvault/internal/config"
	"giftvault/internal/kvstore"
	"giftvault/internal/ledger"
	"giftvault/internal/quote"
	"giftvault/internal/rates"
)

type staticIndex struct{ value int64 }

func (s *staticIndex) CurrentIndex(context.Context) (int64, error) {
	return s.value, nil
}

func sellFixture(t *testing.T, pct, index int64) (*Sell, *ledger.Ledger) {
	t.Helper()

	logger := zerolog.Nop()
	tables, err := rates.NewStore(config.RatesConfig{})
	require.NoError(t, err)

	rateSrc := quote.NewConfigRates(map[string]config.ActiveRateConfig{
		"Amazon": {Percentage: pct, Enabled: true},
	})
	engine := quote.NewEngine(tables, rateSrc, &staticIndex{value: index}, quote.NewMemoryStore(), 15*time.Minute, logger)

	log := ledger.New(kvstore.NewMemStore(), 50, "txn", logger)
	return NewSell(engine, tables, log, logger), log
}

func TestSellQuoteAndRedeemRecordsSale(t *testing.T) {
	s, log := sellFixture(t, 85, 120)

	q, err := s.Quote(context.Background(), "Amazon", 5000)
	require.NoError(t, err)
	require.Equal(t, "Amazon", q.Brand)

	payout, err := s.Redeem(context.Background(), q.ID, 5000)
	require.NoError(t, err)
	// effective rate 85*120/100 = 102 per unit
	require.Equal(t, int64(510000), payout)

	entries := log.List()
	require.Len(t, entries, 1)
	require.Equal(t, ledger.TypeSell, entries[0].Type)
	require.NotNil(t, entries[0].Meta)
	require.Equal(t, ledger.DirectionIn, entries[0].Meta.Direction)
	require.True(t, entries[0].Amount.Equal(decimal.NewFromInt(5100)))
}

func TestSellQuoteUnknownBrand(t *testing.T) {
	s, _ := sellFixture(t, 85, 120)

	_, err := s.Quote(context.Background(), "Steam", 5000)
	require.ErrorIs(t, err, quote.ErrNoActiveRate)
}

func TestSellEstimateMatchesTable(t *testing.T) {
	s, _ := sellFixture(t, 85, 100)

	offer, ok := s.Estimate("Amazon", decimal.NewFromInt(50))
	require.True(t, ok)
	require.Equal(t, "$50", offer.Matched.Label)
	require.True(t, offer.Payout.Equal(decimal.RequireFromString("53195")))

	_, ok = s.Estimate("Amazon", decimal.NewFromInt(1000))
	require.False(t, ok)
}
