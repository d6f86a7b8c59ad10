package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"giftvault/internal/kvstore"
)

const dismissedKey = "giftvault_profile_setup_dismissed"

// CalendarEvent is a principal-owned rate calendar entry.
type CalendarEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Asset     string    `json:"asset"`
	At        time.Time `json:"at"`
	CreatedAt time.Time `json:"created_at"`
}

// Store owns per-principal preference blobs in durable storage.
type Store struct {
	kv     kvstore.Store
	logger zerolog.Logger
}

// NewStore wires the preference store.
func NewStore(kv kvstore.Store, logger zerolog.Logger) *Store {
	return &Store{kv: kv, logger: logger.With().Str("component", "prefs").Logger()}
}

// NotificationsEnabled reads the principal's toggle; default is on.
func (s *Store) NotificationsEnabled(principal string) bool {
	data, err := s.kv.Get("notifications_enabled_" + principal)
	if err != nil {
		return true
	}
	return string(data) != "false"
}

// SetNotificationsEnabled persists the toggle as a "true"/"false" string.
func (s *Store) SetNotificationsEnabled(principal string, enabled bool) error {
	value := "false"
	if enabled {
		value = "true"
	}
	if err := s.kv.Set("notifications_enabled_"+principal, []byte(value)); err != nil {
		return fmt.Errorf("persist notification toggle: %w", err)
	}
	return nil
}

// Calendar returns the principal's rate calendar events.
func (s *Store) Calendar(principal string) []CalendarEvent {
	data, err := s.kv.Get("rate_calendar_" + principal)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			s.logger.Error().Err(err).Str("principal", principal).Msg("failed to load calendar")
		}
		return nil
	}

	var events []CalendarEvent
	if err := json.Unmarshal(data, &events); err != nil {
		s.logger.Error().Err(err).Str("principal", principal).Msg("discarding corrupt calendar")
		return nil
	}
	return events
}

// AddCalendarEvent appends an event to the principal's calendar.
func (s *Store) AddCalendarEvent(principal string, event CalendarEvent) (CalendarEvent, error) {
	if event.Title == "" {
		return CalendarEvent{}, errors.New("prefs: event title is required")
	}
	event.ID = uuid.NewString()
	event.CreatedAt = time.Now().UTC()

	events := append(s.Calendar(principal), event)
	data, err := json.Marshal(events)
	if err != nil {
		return CalendarEvent{}, fmt.Errorf("encode calendar: %w", err)
	}
	if err := s.kv.Set("rate_calendar_"+principal, data); err != nil {
		return CalendarEvent{}, fmt.Errorf("persist calendar: %w", err)
	}
	return event, nil
}

// ProfileSetupDismissed reads the global dismissal map entry for the
// principal.
func (s *Store) ProfileSetupDismissed(principal string) bool {
	dismissed := s.dismissedMap()
	return dismissed[principal]
}

// DismissProfileSetup records the principal's dismissal in the shared map.
func (s *Store) DismissProfileSetup(principal string) error {
	dismissed := s.dismissedMap()
	dismissed[principal] = true

	data, err := json.Marshal(dismissed)
	if err != nil {
		return fmt.Errorf("encode dismissal map: %w", err)
	}
	if err := s.kv.Set(dismissedKey, data); err != nil {
		return fmt.Errorf("persist dismissal map: %w", err)
	}
	return nil
}

func (s *Store) dismissedMap() map[string]bool {
	dismissed := make(map[string]bool)
	data, err := s.kv.Get(dismissedKey)
	if err != nil {
		return dismissed
	}
	if err := json.Unmarshal(data, &dismissed); err != nil {
		s.logger.Error().Err(err).Msg("discarding corrupt dismissal map")
		return make(map[string]bool)
	}
	return dismissed
}
