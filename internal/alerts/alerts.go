package alerts

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"giftvault/internal/kvstore"
)

// ErrAlertNotFound indicates the principal owns no alert with that id.
var ErrAlertNotFound = errors.New("alerts: alert not found")

// Direction states which side of the threshold triggers the alert.
type Direction string

const (
	DirectionAbove Direction = "above"
	DirectionBelow Direction = "below"
)

// Kind distinguishes crypto price alerts from gift-card rate alerts.
type Kind string

const (
	KindCrypto   Kind = "crypto"
	KindGiftcard Kind = "giftcard"
)

// Alert is one principal-owned rate alert.
type Alert struct {
	ID              string          `json:"id"`
	Asset           string          `json:"asset"`
	Threshold       decimal.Decimal `json:"threshold"`
	Direction       Direction       `json:"direction"`
	Kind            Kind            `json:"kind"`
	Enabled         bool            `json:"enabled"`
	CreatedAt       time.Time       `json:"created_at"`
	LastTriggeredAt *time.Time      `json:"last_triggered_at,omitempty"`
}

// Crossed reports whether the observed rate satisfies the alert's condition.
func (a Alert) Crossed(observed decimal.Decimal) bool {
	switch a.Direction {
	case DirectionAbove:
		return observed.GreaterThanOrEqual(a.Threshold)
	case DirectionBelow:
		return observed.LessThanOrEqual(a.Threshold)
	default:
		return false
	}
}

// Manager owns the per-principal alert lists in durable storage.
type Manager struct {
	store  kvstore.Store
	logger zerolog.Logger
}

// NewManager wires the alert manager.
func NewManager(store kvstore.Store, logger zerolog.Logger) *Manager {
	return &Manager{store: store, logger: logger.With().Str("component", "alerts").Logger()}
}

func storageKey(principal string) string {
	return "rate_alerts_" + principal
}

// Principals lists every principal with a stored alert list.
func (m *Manager) Principals() []string {
	keys, err := m.store.Keys("rate_alerts_")
	if err != nil {
		m.logger.Error().Err(err).Msg("failed to enumerate alert principals")
		return nil
	}
	principals := make([]string, 0, len(keys))
	for _, key := range keys {
		principals = append(principals, strings.TrimPrefix(key, "rate_alerts_"))
	}
	return principals
}

// List returns the principal's alerts. A missing or corrupt blob degrades
// to an empty list.
func (m *Manager) List(principal string) []Alert {
	data, err := m.store.Get(storageKey(principal))
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			m.logger.Error().Err(err).Str("principal", principal).Msg("failed to load alerts")
		}
		return nil
	}

	var list []Alert
	if err := json.Unmarshal(data, &list); err != nil {
		m.logger.Error().Err(err).Str("principal", principal).Msg("discarding corrupt alert list")
		return nil
	}
	return list
}

// Create validates and persists a new alert for the principal.
func (m *Manager) Create(principal string, a Alert) (Alert, error) {
	if a.Asset == "" {
		return Alert{}, errors.New("alerts: asset is required")
	}
	if !a.Threshold.IsPositive() {
		return Alert{}, errors.New("alerts: threshold must be positive")
	}
	if a.Direction != DirectionAbove && a.Direction != DirectionBelow {
		return Alert{}, fmt.Errorf("alerts: unknown direction %q", a.Direction)
	}
	if a.Kind != KindCrypto && a.Kind != KindGiftcard {
		return Alert{}, fmt.Errorf("alerts: unknown kind %q", a.Kind)
	}

	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	a.LastTriggeredAt = nil

	list := append(m.List(principal), a)
	if err := m.persist(principal, list); err != nil {
		return Alert{}, err
	}
	return a, nil
}

// Toggle flips the enabled flag of the principal's alert.
func (m *Manager) Toggle(principal, id string) (Alert, error) {
	list := m.List(principal)
	for i := range list {
		if list[i].ID == id {
			list[i].Enabled = !list[i].Enabled
			if err := m.persist(principal, list); err != nil {
				return Alert{}, err
			}
			return list[i], nil
		}
	}
	return Alert{}, ErrAlertNotFound
}

// Delete removes the principal's alert.
func (m *Manager) Delete(principal, id string) error {
	list := m.List(principal)
	for i := range list {
		if list[i].ID == id {
			list = append(list[:i], list[i+1:]...)
			return m.persist(principal, list)
		}
	}
	return ErrAlertNotFound
}

// MarkTriggered records the trigger time used for cooldown suppression.
func (m *Manager) MarkTriggered(principal, id string, at time.Time) error {
	list := m.List(principal)
	for i := range list {
		if list[i].ID == id {
			t := at.UTC()
			list[i].LastTriggeredAt = &t
			return m.persist(principal, list)
		}
	}
	return ErrAlertNotFound
}

func (m *Manager) persist(principal string, list []Alert) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode alerts: %w", err)
	}
	if err := m.store.Set(storageKey(principal), data); err != nil {
		return fmt.Errorf("persist alerts: %w", err)
	}
	return nil
}

// Due filters the alerts that should fire for the observed rate: enabled,
// threshold crossed, and outside the cooldown window.
func Due(list []Alert, observed decimal.Decimal, cooldown time.Duration, now time.Time) []Alert {
	var due []Alert
	for _, a := range list {
		if !a.Enabled || !a.Crossed(observed) {
			continue
		}
		if a.LastTriggeredAt != nil && cooldown > 0 && now.Sub(*a.LastTriggeredAt) < cooldown {
			continue
		}
		due = append(due, a)
	}
	return due
}
