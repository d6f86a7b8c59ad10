package quote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"giftvault/internal/config"
	"giftvault/internal/rates"
)

// RateSource resolves a brand's stored base rate. Absence of an enabled
// entry is reported via the bool, not an error.
type RateSource interface {
	ActiveRate(brand string) (int64, bool)
}

// IndexSource provides the current global coin-price index.
type IndexSource interface {
	CurrentIndex(ctx context.Context) (int64, error)
}

// Store persists issued quotes so the rate lock survives restarts.
type Store interface {
	SaveQuote(ctx context.Context, q Quote) error
	GetQuote(ctx context.Context, id uuid.UUID) (Quote, error)
}

// Engine issues quotes and computes payouts against their snapshots.
type Engine struct {
	tables *rates.Store
	ratesr RateSource
	index  IndexSource
	store  Store
	ttl    time.Duration
	logger zerolog.Logger
}

// NewEngine wires the quote engine.
func NewEngine(tables *rates.Store, rateSrc RateSource, index IndexSource, store Store, ttl time.Duration, logger zerolog.Logger) *Engine {
	return &Engine{
		tables: tables,
		ratesr: rateSrc,
		index:  index,
		store:  store,
		ttl:    ttl,
		logger: logger.With().Str("component", "quote_engine").Logger(),
	}
}

// Generate issues a quote for selling amountCents worth of the brand. The
// effective rate and index are frozen into the quote at issuance.
func (e *Engine) Generate(ctx context.Context, brand string, amountCents int64) (Quote, error) {
	pct, ok := e.ratesr.ActiveRate(brand)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrNoActiveRate, brand)
	}

	idx, err := e.index.CurrentIndex(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("read coin price index: %w", err)
	}

	q := Quote{
		ID:             uuid.New(),
		Brand:          brand,
		RatePct:        pct,
		CoinPriceIndex: idx,
		EffectiveRate:  EffectiveRate(pct, idx),
		CreatedAt:      time.Now().UTC(),
	}

	amount := decimal.NewFromInt(amountCents).Div(hundred)
	if m, ok := rates.Match(amount, e.tables.EffectiveTable(brand)); ok {
		q.TierLabel = m.Label
	}

	if err := e.store.SaveQuote(ctx, q); err != nil {
		return Quote{}, fmt.Errorf("persist quote: %w", err)
	}

	e.logger.Info().
		Str("quote_id", q.ID.String()).
		Str("brand", brand).
		Int64("rate_pct", pct).
		Int64("index", idx).
		Str("effective_rate", q.EffectiveRate.String()).
		Msg("quote issued")

	return q, nil
}

// Payout computes the locked payout for amountCents against a stored quote.
// Unknown or expired quotes fail with ErrStaleQuote; the rate is never
// recomputed from live inputs.
func (e *Engine) Payout(ctx context.Context, id uuid.UUID, amountCents int64) (int64, error) {
	q, err := e.store.GetQuote(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrStaleQuote, id)
	}
	if e.ttl > 0 && time.Since(q.CreatedAt) > e.ttl {
		return 0, fmt.Errorf("%w: %s expired", ErrStaleQuote, id)
	}
	return q.Payout(amountCents), nil
}

// MemoryStore keeps quotes in process memory. It backs the engine when no
// database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	quotes map[uuid.UUID]Quote
}

// NewMemoryStore constructs an empty in-memory quote store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quotes: make(map[uuid.UUID]Quote)}
}

// SaveQuote stores the quote.
func (s *MemoryStore) SaveQuote(_ context.Context, q Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quotes[q.ID] = q
	return nil
}

// GetQuote loads a stored quote.
func (s *MemoryStore) GetQuote(_ context.Context, id uuid.UUID) (Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quotes[id]
	if !ok {
		return Quote{}, ErrStaleQuote
	}
	return q, nil
}

var _ Store = (*MemoryStore)(nil)

// ConfigRates serves active brand rates from static configuration.
type ConfigRates struct {
	active map[string]int64
}

// NewConfigRates filters enabled entries from config.
func NewConfigRates(active map[string]config.ActiveRateConfig) *ConfigRates {
	m := make(map[string]int64, len(active))
	for brand, entry := range active {
		if entry.Enabled {
			m[brand] = entry.Percentage
		}
	}
	return &ConfigRates{active: m}
}

// ActiveRate returns the brand's enabled base rate.
func (c *ConfigRates) ActiveRate(brand string) (int64, bool) {
	pct, ok := c.active[brand]
	return pct, ok
}

var _ RateSource = (*ConfigRates)(nil)
