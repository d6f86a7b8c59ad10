package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"giftvault/internal/quote"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertQuoteSQL = `INSERT INTO quotes (
        id,
        brand,
        rate_pct,
        coin_price_index,
        effective_rate,
        tier_label,
        created_at
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    )
    ON CONFLICT (id) DO NOTHING;`

	getQuoteSQL = `SELECT
        id,
        brand,
        rate_pct,
        coin_price_index,
        effective_rate,
        tier_label,
        created_at
    FROM quotes
    WHERE id = $1;`

	listQuotesBetweenSQL = `SELECT
        id,
        brand,
        rate_pct,
        coin_price_index,
        effective_rate,
        tier_label,
        created_at
    FROM quotes
    WHERE created_at >= $1
      AND created_at < $2
    ORDER BY created_at;`

	listRecentQuotesSQL = `SELECT
        id,
        brand,
        rate_pct,
        coin_price_index,
        effective_rate,
        tier_label,
        created_at
    FROM quotes
    ORDER BY created_at DESC
    LIMIT $1;`

	insertAlertEventSQL = `INSERT INTO alert_events (
        principal,
        alert_id,
        asset,
        observed,
        threshold,
        direction,
        channels
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7
    )
    RETURNING id, principal, alert_id, asset, observed, threshold, direction, channels, created_at;`

	listRecentAlertEventsSQL = `SELECT
        id,
        principal,
        alert_id,
        asset,
        observed,
        threshold,
        direction,
        channels,
        created_at
    FROM alert_events
    ORDER BY created_at DESC
    LIMIT $1;`

	deleteAlertEventsBeforeSQL = `DELETE FROM alert_events WHERE created_at < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// QuoteStore defines operations for quote persistence.
type QuoteStore interface {
	SaveQuote(ctx context.Context, q quote.Quote) error
	GetQuote(ctx context.Context, id uuid.UUID) (quote.Quote, error)
	ListQuotesBetween(ctx context.Context, from, to time.Time) ([]quote.Quote, error)
	ListRecentQuotes(ctx context.Context, limit int) ([]quote.Quote, error)
}

// AlertEventStore defines operations for alert auditing.
type AlertEventStore interface {
	InsertAlertEvent(ctx context.Context, event AlertEvent) (AlertEvent, error)
	ListRecentAlertEvents(ctx context.Context, limit int) ([]AlertEvent, error)
	DeleteAlertEventsBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to quotes and alert events.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctxUnlock, advisoryUnlockSQL, key); err != nil {
			// unlock best effort; log omitted in storage package
		}
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// SaveQuote persists an issued quote. Quotes are immutable, so conflicting
// ids are ignored rather than updated.
func (s *Store) SaveQuote(ctx context.Context, q quote.Quote) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	_, execErr := pool.Exec(ctx, insertQuoteSQL,
		q.ID,
		q.Brand,
		q.RatePct,
		q.CoinPriceIndex,
		q.EffectiveRate.String(),
		q.TierLabel,
		q.CreatedAt,
	)
	if execErr != nil {
		return fmt.Errorf("insert quote: %w", execErr)
	}
	return nil
}

// GetQuote loads a stored quote by id.
func (s *Store) GetQuote(ctx context.Context, id uuid.UUID) (quote.Quote, error) {
	pool, err := s.getPool()
	if err != nil {
		return quote.Quote{}, err
	}

	row := pool.QueryRow(ctx, getQuoteSQL, id)
	q, scanErr := scanQuote(row)
	if scanErr != nil {
		if errors.Is(scanErr, pgx.ErrNoRows) {
			return quote.Quote{}, quote.ErrStaleQuote
		}
		return quote.Quote{}, scanErr
	}
	return q, nil
}

// ListQuotesBetween lists quotes issued within a time window.
func (s *Store) ListQuotesBetween(ctx context.Context, from, to time.Time) ([]quote.Quote, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listQuotesBetweenSQL, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list quotes between: %w", queryErr)
	}
	defer rows.Close()

	quotes := make([]quote.Quote, 0)
	for rows.Next() {
		q, scanErr := scanQuote(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		quotes = append(quotes, q)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return quotes, nil
}

// ListRecentQuotes lists the most recently issued quotes.
func (s *Store) ListRecentQuotes(ctx context.Context, limit int) ([]quote.Quote, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentQuotesSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent quotes: %w", queryErr)
	}
	defer rows.Close()

	quotes := make([]quote.Quote, 0, limit)
	for rows.Next() {
		q, scanErr := scanQuote(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		quotes = append(quotes, q)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return quotes, nil
}

// InsertAlertEvent persists an alert emission.
func (s *Store) InsertAlertEvent(ctx context.Context, event AlertEvent) (AlertEvent, error) {
	pool, err := s.getPool()
	if err != nil {
		return AlertEvent{}, err
	}

	row := pool.QueryRow(ctx, insertAlertEventSQL,
		event.Principal,
		event.AlertID,
		event.Asset,
		event.Observed.String(),
		event.Threshold.String(),
		event.Direction,
		event.Channels,
	)

	rec, scanErr := scanAlertEvent(row)
	if scanErr != nil {
		return AlertEvent{}, fmt.Errorf("insert alert event: %w", scanErr)
	}
	return rec, nil
}

// ListRecentAlertEvents lists most recent alert emissions.
func (s *Store) ListRecentAlertEvents(ctx context.Context, limit int) ([]AlertEvent, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertEventsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alert events: %w", queryErr)
	}
	defer rows.Close()

	events := make([]AlertEvent, 0, limit)
	for rows.Next() {
		rec, scanErr := scanAlertEvent(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		events = append(events, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return events, nil
}

// DeleteAlertEventsBefore deletes historical alert events.
func (s *Store) DeleteAlertEventsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteAlertEventsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete alert events before: %w", execErr)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (quote.Quote, error) {
	var (
		q       quote.Quote
		rateStr string
	)

	if err := row.Scan(
		&q.ID,
		&q.Brand,
		&q.RatePct,
		&q.CoinPriceIndex,
		&rateStr,
		&q.TierLabel,
		&q.CreatedAt,
	); err != nil {
		return quote.Quote{}, err
	}

	rate, err := decimal.NewFromString(rateStr)
	if err != nil {
		return quote.Quote{}, fmt.Errorf("parse effective rate: %w", err)
	}
	q.EffectiveRate = rate

	return q, nil
}

func scanAlertEvent(row rowScanner) (AlertEvent, error) {
	var (
		rec          AlertEvent
		observedStr  string
		thresholdStr string
	)

	if err := row.Scan(
		&rec.ID,
		&rec.Principal,
		&rec.AlertID,
		&rec.Asset,
		&observedStr,
		&thresholdStr,
		&rec.Direction,
		&rec.Channels,
		&rec.CreatedAt,
	); err != nil {
		return AlertEvent{}, err
	}

	var convErr error
	rec.Observed, convErr = decimal.NewFromString(observedStr)
	if convErr != nil {
		return AlertEvent{}, fmt.Errorf("parse observed rate: %w", convErr)
	}
	rec.Threshold, convErr = decimal.NewFromString(thresholdStr)
	if convErr != nil {
		return AlertEvent{}, fmt.Errorf("parse threshold: %w", convErr)
	}

	return rec, nil
}
