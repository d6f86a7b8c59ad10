package ranking

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"giftvault/internal/rates"
)

// GiftCard is the subset of the card entity ranking needs.
type GiftCard struct {
	ID    string
	Brand string
}

// RankedGiftCard pairs a card with its best available tier rate. BestRate is
// nil when the brand's table could not be resolved.
type RankedGiftCard struct {
	Card     GiftCard
	BestRate *decimal.Decimal
	Label    string
}

// TableSource resolves the effective table for a brand.
type TableSource interface {
	EffectiveTable(brand string) rates.Table
}

// Engine orders gift cards by best available rate.
type Engine struct {
	tables   TableSource
	collator *collate.Collator
}

// NewEngine builds a ranking engine. Brand names compare locale-aware.
func NewEngine(tables TableSource) *Engine {
	return &Engine{
		tables:   tables,
		collator: collate.New(language.English),
	}
}

// Rank computes best rates and sorts the cards by descending desirability:
// rated cards before unrated, higher rate first, then brand name ascending,
// then card ID ascending. The order is total, so repeated calls on the same
// input always agree.
func (e *Engine) Rank(cards []GiftCard) []RankedGiftCard {
	ranked := make([]RankedGiftCard, 0, len(cards))
	for _, card := range cards {
		entry := RankedGiftCard{Card: card, Label: "unavailable"}
		if table := e.tables.EffectiveTable(card.Brand); len(table) > 0 {
			if best, ok := rates.BestRate(table); ok {
				rate := best
				entry.BestRate = &rate
				entry.Label = "up to " + rate.StringFixed(2) + "/unit"
			}
		}
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return e.less(ranked[i], ranked[j])
	})
	return ranked
}

func (e *Engine) less(a, b RankedGiftCard) bool {
	switch {
	case a.BestRate != nil && b.BestRate == nil:
		return true
	case a.BestRate == nil && b.BestRate != nil:
		return false
	case a.BestRate != nil && b.BestRate != nil:
		if cmp := a.BestRate.Cmp(*b.BestRate); cmp != 0 {
			return cmp > 0
		}
	}
	if cmp := e.collator.CompareString(a.Card.Brand, b.Card.Brand); cmp != 0 {
		return cmp < 0
	}
	return strings.Compare(a.Card.ID, b.Card.ID) < 0
}
