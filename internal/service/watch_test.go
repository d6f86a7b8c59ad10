package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"giftvault/internal/alerting"
	"giftvault/internal/alerts"
	"giftvault/internal/config"
	"giftvault/internal/fetcher"
	"giftvault/internal/kvstore"
	"giftvault/internal/prefs"
	"giftvault/internal/rates"
	"giftvault/internal/storage"
)

type recordingNotifier struct {
	sent []alerting.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, note alerting.Notification) error {
	r.sent = append(r.sent, note)
	return nil
}

type recordingEventStore struct {
	events []storage.AlertEvent
}

func (r *recordingEventStore) InsertAlertEvent(_ context.Context, event storage.AlertEvent) (storage.AlertEvent, error) {
	event.ID = int64(len(r.events) + 1)
	event.CreatedAt = time.Now().UTC()
	r.events = append(r.events, event)
	return event, nil
}

func (r *recordingEventStore) ListRecentAlertEvents(context.Context, int) ([]storage.AlertEvent, error) {
	return r.events, nil
}

func (r *recordingEventStore) DeleteAlertEventsBefore(context.Context, time.Time) error {
	return nil
}

func watchFixture(t *testing.T, index int64) (*Watch, *alerts.Manager, *prefs.Store, *recordingNotifier, *recordingEventStore) {
	t.Helper()

	kv := kvstore.NewMemStore()
	logger := zerolog.Nop()
	manager := alerts.NewManager(kv, logger)
	prefStore := prefs.NewStore(kv, logger)
	notifier := &recordingNotifier{}
	events := &recordingEventStore{}

	tables, err := rates.NewStore(config.RatesConfig{})
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.Index.Baseline = 100
	cfg.Alerting.Enabled = true
	cfg.Alerting.Cooldown = time.Hour
	cfg.Alerting.Channels = []string{"telegram"}

	w := NewWatch(cfg, nil, &fetcher.Static{Value: index}, tables, manager, prefStore, events, notifier, logger)
	return w, manager, prefStore, notifier, events
}

func TestWatchFiresCryptoAlert(t *testing.T) {
	w, manager, _, notifier, events := watchFixture(t, 120)

	created, err := manager.Create("principal-1", alerts.Alert{
		Asset:     "BTC",
		Threshold: decimal.NewFromInt(110),
		Direction: alerts.DirectionAbove,
		Kind:      alerts.KindCrypto,
		Enabled:   true,
	})
	require.NoError(t, err)

	require.NoError(t, w.ProcessTick(context.Background(), time.Now().UTC()))

	require.Len(t, notifier.sent, 1)
	require.Equal(t, "principal-1", notifier.sent[0].Principal)
	require.Equal(t, "BTC", notifier.sent[0].Asset)
	require.True(t, notifier.sent[0].Observed.Equal(decimal.NewFromInt(120)))

	require.Len(t, events.events, 1)
	require.Equal(t, created.ID, events.events[0].AlertID)

	// trigger time recorded for cooldown
	list := manager.List("principal-1")
	require.Len(t, list, 1)
	require.NotNil(t, list[0].LastTriggeredAt)
}

func TestWatchGiftcardObservedScalesWithIndex(t *testing.T) {
	// default table's best rate is 1072.45; at index 120 with baseline 100
	// the observed gift-card rate is 1286.94.
	w, manager, _, notifier, _ := watchFixture(t, 120)

	_, err := manager.Create("principal-1", alerts.Alert{
		Asset:     "Amazon",
		Threshold: decimal.RequireFromString("1280"),
		Direction: alerts.DirectionAbove,
		Kind:      alerts.KindGiftcard,
		Enabled:   true,
	})
	require.NoError(t, err)

	require.NoError(t, w.ProcessTick(context.Background(), time.Now().UTC()))

	require.Len(t, notifier.sent, 1)
	require.True(t, notifier.sent[0].Observed.Equal(decimal.RequireFromString("1286.94")),
		"observed %s", notifier.sent[0].Observed)
}

func TestWatchSkipsWhenNotificationsDisabled(t *testing.T) {
	w, manager, prefStore, notifier, events := watchFixture(t, 120)

	_, err := manager.Create("principal-1", alerts.Alert{
		Asset:     "BTC",
		Threshold: decimal.NewFromInt(110),
		Direction: alerts.DirectionAbove,
		Kind:      alerts.KindCrypto,
		Enabled:   true,
	})
	require.NoError(t, err)
	require.NoError(t, prefStore.SetNotificationsEnabled("principal-1", false))

	require.NoError(t, w.ProcessTick(context.Background(), time.Now().UTC()))

	require.Empty(t, notifier.sent)
	require.Empty(t, events.events)
}

func TestWatchCooldownSuppressesRepeat(t *testing.T) {
	w, manager, _, notifier, _ := watchFixture(t, 120)

	_, err := manager.Create("principal-1", alerts.Alert{
		Asset:     "BTC",
		Threshold: decimal.NewFromInt(110),
		Direction: alerts.DirectionAbove,
		Kind:      alerts.KindCrypto,
		Enabled:   true,
	})
	require.NoError(t, err)

	require.NoError(t, w.ProcessTick(context.Background(), time.Now().UTC()))
	require.NoError(t, w.ProcessTick(context.Background(), time.Now().UTC()))

	require.Len(t, notifier.sent, 1)
}

func TestWatchBelowThresholdDoesNotFire(t *testing.T) {
	w, manager, _, notifier, _ := watchFixture(t, 100)

	_, err := manager.Create("principal-1", alerts.Alert{
		Asset:     "BTC",
		Threshold: decimal.NewFromInt(110),
		Direction: alerts.DirectionAbove,
		Kind:      alerts.KindCrypto,
		Enabled:   true,
	})
	require.NoError(t, err)

	require.NoError(t, w.ProcessTick(context.Background(), time.Now().UTC()))
	require.Empty(t, notifier.sent)
}
