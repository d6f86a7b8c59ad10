package rates

import (
	"fmt"

	"github.com/shopspring/decimal"

	"giftvault/internal/config"
)

// Table is an ordered sequence of tiers for one brand. Matching walks the
// table in order, so authors must order overlapping tiers deliberately.
type Table []Tier

// defaultTable prices brands that have no configured override. It is never
// empty, so EffectiveTable always has something to match against.
var defaultTable = Table{
	Fixed(dec("10"), dec("1032.40")),
	Fixed(dec("25"), dec("1048.15")),
	Fixed(dec("50"), dec("1063.90")),
	Fixed(dec("100"), dec("1072.45")),
	Range(dec("10"), dec("24"), dec("1039.80")),
	Range(dec("25"), dec("49"), dec("1053.57")),
	Range(dec("50"), dec("99"), dec("1060.12")),
	Range(dec("100"), dec("500"), dec("1070.35")),
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Store resolves the effective rate table for a brand: a configured override
// when present and non-empty, the default table otherwise.
type Store struct {
	def       Table
	overrides map[string]Table
}

// NewStore builds a Store from configuration. Tables are parsed and
// validated eagerly so malformed rate config surfaces at startup.
func NewStore(cfg config.RatesConfig) (*Store, error) {
	def := defaultTable
	if len(cfg.DefaultTable) > 0 {
		parsed, err := BuildTable(cfg.DefaultTable)
		if err != nil {
			return nil, fmt.Errorf("default table: %w", err)
		}
		def = parsed
	}

	overrides := make(map[string]Table, len(cfg.Overrides))
	for brand, tiers := range cfg.Overrides {
		parsed, err := BuildTable(tiers)
		if err != nil {
			return nil, fmt.Errorf("override for %q: %w", brand, err)
		}
		if len(parsed) == 0 {
			continue
		}
		overrides[brand] = parsed
	}

	return &Store{def: def, overrides: overrides}, nil
}

// EffectiveTable returns the table to match against for the brand. The
// result always has at least one tier; absence of an override is not a
// failure.
func (s *Store) EffectiveTable(brand string) Table {
	if table, ok := s.overrides[brand]; ok && len(table) > 0 {
		return table
	}
	return s.def
}

// Brands lists the brands with a configured override.
func (s *Store) Brands() []string {
	brands := make([]string, 0, len(s.overrides))
	for brand := range s.overrides {
		brands = append(brands, brand)
	}
	return brands
}

// BuildTable parses tier configs into a validated table.
func BuildTable(tiers []config.TierConfig) (Table, error) {
	table := make(Table, 0, len(tiers))
	for i, tc := range tiers {
		tier, err := buildTier(tc)
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", i, err)
		}
		table = append(table, tier)
	}
	return table, nil
}

func buildTier(tc config.TierConfig) (Tier, error) {
	rate, err := decimal.NewFromString(tc.Rate)
	if err != nil {
		return Tier{}, fmt.Errorf("parse rate %q: %w", tc.Rate, err)
	}

	var tier Tier
	switch Kind(tc.Kind) {
	case KindFixed:
		amount, err := decimal.NewFromString(tc.Amount)
		if err != nil {
			return Tier{}, fmt.Errorf("parse amount %q: %w", tc.Amount, err)
		}
		tier = Fixed(amount, rate)
	case KindRange:
		min, err := decimal.NewFromString(tc.Min)
		if err != nil {
			return Tier{}, fmt.Errorf("parse min %q: %w", tc.Min, err)
		}
		max, err := decimal.NewFromString(tc.Max)
		if err != nil {
			return Tier{}, fmt.Errorf("parse max %q: %w", tc.Max, err)
		}
		tier = Range(min, max, rate)
	default:
		return Tier{}, fmt.Errorf("%w: %q", ErrUnknownKind, tc.Kind)
	}

	if err := tier.Validate(); err != nil {
		return Tier{}, err
	}
	return tier, nil
}
