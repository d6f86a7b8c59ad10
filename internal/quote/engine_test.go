package quote

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftvault/internal/config"
	"giftvault/internal/rates"
)

type staticIndex struct {
	value int64
}

func (s *staticIndex) CurrentIndex(context.Context) (int64, error) {
	return s.value, nil
}

func newTestEngine(t *testing.T, index *staticIndex) (*Engine, *MemoryStore) {
	t.Helper()

	tables, err := rates.NewStore(config.RatesConfig{})
	require.NoError(t, err)

	src := NewConfigRates(map[string]config.ActiveRateConfig{
		"Apple/iTunes Gift Card": {Percentage: 85, Enabled: true},
		"Disabled Brand":         {Percentage: 90, Enabled: false},
	})

	store := NewMemoryStore()
	engine := NewEngine(tables, src, index, store, 15*time.Minute, zerolog.Nop())
	return engine, store
}

func TestEffectiveRate(t *testing.T) {
	require.True(t, EffectiveRate(100, 100).Equal(decimal.NewFromInt(100)))
	require.True(t, EffectiveRate(85, 120).Equal(decimal.NewFromInt(102)))

	// Monotonic in both arguments.
	require.True(t, EffectiveRate(86, 120).GreaterThan(EffectiveRate(85, 120)))
	require.True(t, EffectiveRate(85, 121).GreaterThan(EffectiveRate(85, 120)))
}

func TestEngine_GenerateSnapshotsRate(t *testing.T) {
	index := &staticIndex{value: 120}
	engine, _ := newTestEngine(t, index)

	q, err := engine.Generate(context.Background(), "Apple/iTunes Gift Card", 5000)
	require.NoError(t, err)
	require.Equal(t, int64(85), q.RatePct)
	require.Equal(t, int64(120), q.CoinPriceIndex)
	require.True(t, q.EffectiveRate.Equal(decimal.NewFromInt(102)))
	require.Equal(t, "$50", q.TierLabel)
	require.NotEqual(t, uuid.Nil, q.ID)
}

func TestEngine_NoActiveRate(t *testing.T) {
	engine, _ := newTestEngine(t, &staticIndex{value: 100})

	_, err := engine.Generate(context.Background(), "Disabled Brand", 5000)
	require.ErrorIs(t, err, ErrNoActiveRate)

	_, err = engine.Generate(context.Background(), "Never Configured", 5000)
	require.ErrorIs(t, err, ErrNoActiveRate)
}

func TestEngine_RateLock(t *testing.T) {
	index := &staticIndex{value: 120}
	engine, _ := newTestEngine(t, index)

	q, err := engine.Generate(context.Background(), "Apple/iTunes Gift Card", 5000)
	require.NoError(t, err)

	first, err := engine.Payout(context.Background(), q.ID, 5000)
	require.NoError(t, err)

	// Admin moves the global index; the locked quote must not care.
	index.value = 80
	second, err := engine.Payout(context.Background(), q.ID, 5000)
	require.NoError(t, err)
	require.Equal(t, first, second)

	// 5000 cents at 102 per unit.
	require.Equal(t, int64(510000), first)
}

func TestEngine_StaleQuote(t *testing.T) {
	engine, store := newTestEngine(t, &staticIndex{value: 100})

	_, err := engine.Payout(context.Background(), uuid.New(), 5000)
	require.ErrorIs(t, err, ErrStaleQuote)

	expired := Quote{
		ID:            uuid.New(),
		Brand:         "Apple/iTunes Gift Card",
		EffectiveRate: decimal.NewFromInt(100),
		CreatedAt:     time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, store.SaveQuote(context.Background(), expired))

	_, err = engine.Payout(context.Background(), expired.ID, 5000)
	require.ErrorIs(t, err, ErrStaleQuote)
}

func TestQuote_PayoutRoundsHalfUp(t *testing.T) {
	q := Quote{EffectiveRate: decimal.RequireFromString("1.005")}
	require.Equal(t, int64(101), q.Payout(100))
}
