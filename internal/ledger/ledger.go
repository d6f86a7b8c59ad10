package ledger

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"giftvault/internal/kvstore"
)

// storageKey is the durable-storage key for the local transaction log.
const storageKey = "local_transactions"

// EntryType tags the user action that produced a ledger entry.
type EntryType string

const (
	TypeBuy     EntryType = "buy"
	TypeSell    EntryType = "sell"
	TypeSend    EntryType = "send"
	TypeSwap    EntryType = "swap"
	TypeBillPay EntryType = "bill_pay"
)

// Direction indicates value flow relative to the principal.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Metadata carries the optional asset context of an entry.
type Metadata struct {
	Direction Direction `json:"direction,omitempty"`
	Asset     string    `json:"asset,omitempty"`
	FromAsset string    `json:"from_asset,omitempty"`
	ToAsset   string    `json:"to_asset,omitempty"`
}

// Entry is one immutable local transaction record.
type Entry struct {
	ID          string          `json:"id"`
	Type        EntryType       `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	Meta        *Metadata       `json:"meta,omitempty"`
}

// Ledger is the append-only client-side transaction log, newest-first,
// capped at a fixed number of entries. The in-memory list is authoritative
// for the session; durable writes are best-effort and never fail the caller.
type Ledger struct {
	mu      sync.Mutex
	store   kvstore.Store
	entries []Entry
	max     int
	prefix  string
	logger  zerolog.Logger
}

// New loads any persisted entries and returns the ledger. A corrupt or
// unreadable blob degrades to an empty log.
func New(store kvstore.Store, max int, prefix string, logger zerolog.Logger) *Ledger {
	l := &Ledger{
		store:  store,
		max:    max,
		prefix: prefix,
		logger: logger.With().Str("component", "ledger").Logger(),
	}

	data, err := store.Get(storageKey)
	switch {
	case err == nil:
		if unmarshalErr := json.Unmarshal(data, &l.entries); unmarshalErr != nil {
			l.logger.Error().Err(unmarshalErr).Msg("discarding corrupt transaction log")
			l.entries = nil
		}
	case errors.Is(err, kvstore.ErrNotFound):
	default:
		l.logger.Error().Err(err).Msg("failed to load transaction log")
	}

	return l
}

// Append assigns an id and timestamp, prepends the entry, truncates to the
// retention cap, and persists. Storage failures are logged and swallowed;
// the entry still lands in the in-memory log.
func (l *Ledger) Append(e Entry) Entry {
	now := time.Now().UTC()
	e.ID = l.newID(now)
	e.CreatedAt = now

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]Entry{e}, l.entries...)
	if len(l.entries) > l.max {
		l.entries = l.entries[:l.max]
	}

	l.persistLocked()
	return e
}

// List returns the stored entries, newest first.
func (l *Ledger) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Clear removes all entries for the current scope.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = nil
	if err := l.store.Delete(storageKey); err != nil {
		l.logger.Error().Err(err).Msg("failed to clear transaction log")
	}
}

func (l *Ledger) persistLocked() {
	data, err := json.Marshal(l.entries)
	if err != nil {
		l.logger.Error().Err(err).Msg("failed to encode transaction log")
		return
	}
	if err := l.store.Set(storageKey, data); err != nil {
		l.logger.Error().Err(err).Msg("failed to persist transaction log")
	}
}

func (l *Ledger) newID(now time.Time) string {
	var buf [3]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("%s-%d-%06x", l.prefix, now.UnixMilli(), now.UnixNano()&0xffffff)
	}
	return fmt.Sprintf("%s-%d-%s", l.prefix, now.UnixMilli(), hex.EncodeToString(buf[:]))
}
