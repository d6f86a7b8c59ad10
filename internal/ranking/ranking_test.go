package ranking

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftvault/internal/rates"
)

type fakeTables struct {
	tables map[string]rates.Table
}

func (f *fakeTables) EffectiveTable(brand string) rates.Table {
	return f.tables[brand]
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestEngine() *Engine {
	return NewEngine(&fakeTables{tables: map[string]rates.Table{
		"Apple":  {rates.Fixed(dec("50"), dec("1063.90")), rates.Fixed(dec("100"), dec("1072.45"))},
		"Steam":  {rates.Fixed(dec("50"), dec("1050.00"))},
		"Amazon": {rates.Fixed(dec("50"), dec("1072.45"))},
	}})
}

func TestRank_Empty(t *testing.T) {
	engine := newTestEngine()
	require.Empty(t, engine.Rank(nil))
	require.Empty(t, engine.Rank([]GiftCard{}))
}

func TestRank_Order(t *testing.T) {
	engine := newTestEngine()

	cards := []GiftCard{
		{ID: "c1", Brand: "Steam"},
		{ID: "c2", Brand: "Unknown"},
		{ID: "c3", Brand: "Apple"},
		{ID: "c4", Brand: "Amazon"},
	}

	ranked := engine.Rank(cards)
	require.Len(t, ranked, 4)

	// Amazon and Apple tie at 1072.45; brand name ascending breaks the tie.
	require.Equal(t, "c4", ranked[0].Card.ID)
	require.Equal(t, "c3", ranked[1].Card.ID)
	require.Equal(t, "c1", ranked[2].Card.ID)

	// Cards without a resolvable rate sort last.
	require.Equal(t, "c2", ranked[3].Card.ID)
	require.Nil(t, ranked[3].BestRate)
	require.Equal(t, "unavailable", ranked[3].Label)
}

func TestRank_IDBreaksFinalTie(t *testing.T) {
	engine := newTestEngine()

	cards := []GiftCard{
		{ID: "b", Brand: "Apple"},
		{ID: "a", Brand: "Apple"},
	}

	ranked := engine.Rank(cards)
	require.Equal(t, "a", ranked[0].Card.ID)
	require.Equal(t, "b", ranked[1].Card.ID)
}

func TestRank_Idempotent(t *testing.T) {
	engine := newTestEngine()

	cards := []GiftCard{
		{ID: "c1", Brand: "Steam"},
		{ID: "c2", Brand: "Apple"},
		{ID: "c3", Brand: "Amazon"},
	}

	once := engine.Rank(cards)

	input := make([]GiftCard, len(once))
	for i, r := range once {
		input[i] = r.Card
	}
	twice := engine.Rank(input)

	for i := range once {
		require.Equal(t, once[i].Card.ID, twice[i].Card.ID)
	}
}

func TestRank_BestRateIsTableMax(t *testing.T) {
	engine := newTestEngine()

	ranked := engine.Rank([]GiftCard{{ID: "c1", Brand: "Apple"}})
	require.NotNil(t, ranked[0].BestRate)
	require.True(t, ranked[0].BestRate.Equal(dec("1072.45")))
}
