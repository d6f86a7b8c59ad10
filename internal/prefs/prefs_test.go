package prefs

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"giftvault/internal/kvstore"
)

func newTestStore() *Store {
	return NewStore(kvstore.NewMemStore(), zerolog.Nop())
}

func TestNotificationsToggle(t *testing.T) {
	s := newTestStore()

	// Default is on.
	require.True(t, s.NotificationsEnabled("p"))

	require.NoError(t, s.SetNotificationsEnabled("p", false))
	require.False(t, s.NotificationsEnabled("p"))
	require.True(t, s.NotificationsEnabled("other"))

	require.NoError(t, s.SetNotificationsEnabled("p", true))
	require.True(t, s.NotificationsEnabled("p"))
}

func TestCalendar(t *testing.T) {
	s := newTestStore()

	require.Empty(t, s.Calendar("p"))

	event, err := s.AddCalendarEvent("p", CalendarEvent{
		Title: "ICP rate review",
		Asset: "ICP",
		At:    time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)
	require.NotEmpty(t, event.ID)

	events := s.Calendar("p")
	require.Len(t, events, 1)
	require.Equal(t, "ICP rate review", events[0].Title)

	require.Empty(t, s.Calendar("other"))
}

func TestAddCalendarEvent_RequiresTitle(t *testing.T) {
	s := newTestStore()
	_, err := s.AddCalendarEvent("p", CalendarEvent{})
	require.Error(t, err)
}

func TestProfileSetupDismissal_SharedMapKeyedByPrincipal(t *testing.T) {
	kv := kvstore.NewMemStore()
	s := NewStore(kv, zerolog.Nop())

	require.False(t, s.ProfileSetupDismissed("p1"))

	require.NoError(t, s.DismissProfileSetup("p1"))
	require.True(t, s.ProfileSetupDismissed("p1"))
	require.False(t, s.ProfileSetupDismissed("p2"))

	// Both principals live in the one shared blob.
	data, err := kv.Get("giftvault_profile_setup_dismissed")
	require.NoError(t, err)
	require.JSONEq(t, `{"p1":true}`, string(data))
}
