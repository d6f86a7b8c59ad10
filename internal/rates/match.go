package rates

import "github.com/shopspring/decimal"

// Matched is the result of matching an amount against a table.
type Matched struct {
	Tier  Tier
	Label string
	Rate  decimal.Decimal
}

// Match resolves the tier covering amount, if any. Fixed tiers take priority
// over overlapping ranges: the table is scanned once for an exact fixed
// match, then again for the first covering range. Within each pass the first
// entry in table order wins. Non-positive amounts never match.
func Match(amount decimal.Decimal, table Table) (Matched, bool) {
	if !amount.IsPositive() {
		return Matched{}, false
	}

	for _, tier := range table {
		if tier.Kind == KindFixed && tier.Amount.Equal(amount) {
			return matched(tier), true
		}
	}

	for _, tier := range table {
		if tier.Kind == KindRange && tier.Contains(amount) {
			return matched(tier), true
		}
	}

	return Matched{}, false
}

func matched(tier Tier) Matched {
	return Matched{Tier: tier, Label: tier.Label(), Rate: tier.Rate}
}

// BestRate returns the highest tier rate in the table, or false when the
// table is empty.
func BestRate(table Table) (decimal.Decimal, bool) {
	if len(table) == 0 {
		return decimal.Decimal{}, false
	}
	best := table[0].Rate
	for _, tier := range table[1:] {
		if tier.Rate.GreaterThan(best) {
			best = tier.Rate
		}
	}
	return best, true
}
