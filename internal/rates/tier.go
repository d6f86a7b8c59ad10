package rates

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Kind discriminates the two tier variants.
type Kind string

const (
	// KindFixed prices one exact card denomination.
	KindFixed Kind = "fixed"
	// KindRange prices a closed interval of denominations.
	KindRange Kind = "range"
)

var (
	// ErrUnknownKind indicates a tier config with an unrecognised kind tag.
	ErrUnknownKind = errors.New("rates: unknown tier kind")
	// ErrInvalidTier indicates a tier that violates its invariants.
	ErrInvalidTier = errors.New("rates: invalid tier")
)

// Tier is one priced bracket within a brand's rate table. Fixed tiers carry
// Amount; range tiers carry Min and Max. Rate is target-currency units per
// source unit for both variants.
type Tier struct {
	Kind   Kind
	Amount decimal.Decimal
	Min    decimal.Decimal
	Max    decimal.Decimal
	Rate   decimal.Decimal
}

// Fixed constructs a fixed-denomination tier.
func Fixed(amount, rate decimal.Decimal) Tier {
	return Tier{Kind: KindFixed, Amount: amount, Rate: rate}
}

// Range constructs a bracket tier covering [min, max].
func Range(min, max, rate decimal.Decimal) Tier {
	return Tier{Kind: KindRange, Min: min, Max: max, Rate: rate}
}

// Validate checks the variant's invariants.
func (t Tier) Validate() error {
	if !t.Rate.IsPositive() {
		return fmt.Errorf("%w: rate must be positive, got %s", ErrInvalidTier, t.Rate)
	}
	switch t.Kind {
	case KindFixed:
		if !t.Amount.IsPositive() {
			return fmt.Errorf("%w: fixed amount must be positive, got %s", ErrInvalidTier, t.Amount)
		}
	case KindRange:
		if t.Min.GreaterThan(t.Max) {
			return fmt.Errorf("%w: range min %s exceeds max %s", ErrInvalidTier, t.Min, t.Max)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, t.Kind)
	}
	return nil
}

// Contains reports whether the tier covers the given amount.
func (t Tier) Contains(amount decimal.Decimal) bool {
	switch t.Kind {
	case KindFixed:
		return t.Amount.Equal(amount)
	case KindRange:
		return amount.GreaterThanOrEqual(t.Min) && amount.LessThanOrEqual(t.Max)
	default:
		return false
	}
}

// Label renders the tier for display, e.g. "$50" or "$25-$49".
func (t Tier) Label() string {
	if t.Kind == KindFixed {
		return "$" + t.Amount.String()
	}
	return fmt.Sprintf("$%s-$%s", t.Min.String(), t.Max.String())
}
