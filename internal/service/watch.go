package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"giftvault/internal/alerting"
	"giftvault/internal/alerts"
	"giftvault/internal/config"
	"giftvault/internal/fetcher"
	"giftvault/internal/prefs"
	"giftvault/internal/rates"
	"giftvault/internal/scheduler"
	"giftvault/internal/storage"
)

// Watch orchestrates index polling, alert evaluation, and delivery.
type Watch struct {
	scheduler *scheduler.Scheduler
	index     fetcher.IndexFetcher
	tables    *rates.Store
	manager   *alerts.Manager
	prefs     *prefs.Store
	events    storage.AlertEventStore
	notifier  alerting.Notifier
	logger    zerolog.Logger

	baseline decimal.Decimal
	cooldown time.Duration
	channels []string
	alertsOn bool
	locker   storage.AdvisoryLocker
	lockKey  int64

	now func() time.Time
}

// NewWatch constructs the alert evaluation service.
func NewWatch(cfg *config.Config, sched *scheduler.Scheduler, index fetcher.IndexFetcher, tables *rates.Store, manager *alerts.Manager, prefStore *prefs.Store, events storage.AlertEventStore, notifier alerting.Notifier, logger zerolog.Logger) *Watch {
	var locker storage.AdvisoryLocker
	if l, ok := events.(storage.AdvisoryLocker); ok {
		locker = l
	}

	return &Watch{
		scheduler: sched,
		index:     index,
		tables:    tables,
		manager:   manager,
		prefs:     prefStore,
		events:    events,
		notifier:  notifier,
		logger:    logger.With().Str("component", "watch").Logger(),
		baseline:  decimal.NewFromInt(cfg.Index.Baseline),
		cooldown:  cfg.Alerting.Cooldown,
		channels:  cfg.Alerting.Channels,
		alertsOn:  cfg.Alerting.Enabled,
		locker:    locker,
		lockKey:   cfg.Watcher.AdvisoryLockKey,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Run begins the aligned evaluation loop.
func (w *Watch) Run(ctx context.Context) error {
	if w.scheduler == nil {
		return fmt.Errorf("scheduler not configured")
	}
	return w.scheduler.Run(ctx, w.ProcessTick)
}

// ProcessTick evaluates one tick under the advisory lock, so concurrent
// watchers never double-deliver.
func (w *Watch) ProcessTick(ctx context.Context, bucket time.Time) error {
	unlock, proceed, err := w.acquireLock(ctx)
	if err != nil {
		return err
	}
	if !proceed {
		w.logger.Debug().Time("bucket", bucket).Msg("skip tick because advisory lock held elsewhere")
		return nil
	}
	if unlock != nil {
		defer unlock()
	}

	return w.executeTick(ctx, bucket)
}

func (w *Watch) executeTick(ctx context.Context, bucket time.Time) error {
	index, err := w.index.CurrentIndex(ctx)
	if err != nil {
		return fmt.Errorf("fetch coin price index: %w", err)
	}
	if index <= 0 {
		return fmt.Errorf("coin price index returned non-positive value %d", index)
	}

	fired := 0
	for _, principal := range w.manager.Principals() {
		fired += w.evaluatePrincipal(ctx, principal, index)
	}

	w.logger.Info().Time("bucket", bucket).
		Int64("index", index).
		Int("fired", fired).
		Msg("alert tick evaluated")
	return nil
}

func (w *Watch) evaluatePrincipal(ctx context.Context, principal string, index int64) int {
	if !w.prefs.NotificationsEnabled(principal) {
		return 0
	}

	now := w.now()
	fired := 0
	list := w.manager.List(principal)
	for _, a := range list {
		observed := w.observedRate(a, index)
		if len(alerts.Due([]alerts.Alert{a}, observed, w.cooldown, now)) == 0 {
			continue
		}
		w.fire(ctx, principal, a, observed, index, now)
		fired++
	}
	return fired
}

// observedRate translates the raw index into the unit the alert was set in.
// Crypto alerts compare against the index itself; gift-card alerts compare
// against the brand's best effective rate at the current index.
func (w *Watch) observedRate(a alerts.Alert, index int64) decimal.Decimal {
	if a.Kind == alerts.KindCrypto {
		return decimal.NewFromInt(index)
	}

	best, ok := rates.BestRate(w.tables.EffectiveTable(a.Asset))
	if !ok {
		return decimal.Zero
	}
	return best.Mul(decimal.NewFromInt(index)).Div(w.baseline)
}

func (w *Watch) fire(ctx context.Context, principal string, a alerts.Alert, observed decimal.Decimal, index int64, now time.Time) {
	if w.events != nil {
		event := storage.AlertEvent{
			Principal: principal,
			AlertID:   a.ID,
			Asset:     a.Asset,
			Observed:  observed,
			Threshold: a.Threshold,
			Direction: string(a.Direction),
			Channels:  w.channels,
		}
		if _, err := w.events.InsertAlertEvent(ctx, event); err != nil {
			w.logger.Error().Err(err).Str("alert_id", a.ID).Msg("failed to persist alert event")
		}
	}

	if w.alertsOn && w.notifier != nil {
		note := alerting.Notification{
			Principal:   principal,
			Asset:       a.Asset,
			Kind:        string(a.Kind),
			Direction:   string(a.Direction),
			Threshold:   a.Threshold,
			Observed:    observed,
			Index:       index,
			Channels:    w.channels,
			TriggeredAt: now,
		}
		if err := w.notifier.Notify(ctx, note); err != nil {
			w.logger.Error().Err(err).Str("alert_id", a.ID).Msg("failed to dispatch alert")
		}
	}

	if err := w.manager.MarkTriggered(principal, a.ID, now); err != nil {
		w.logger.Error().Err(err).Str("alert_id", a.ID).Msg("failed to record trigger time")
	}
	alertsFiredTotal.WithLabelValues(string(a.Kind)).Inc()
}

func (w *Watch) acquireLock(ctx context.Context) (func(), bool, error) {
	if w.lockKey == 0 || w.locker == nil {
		return nil, true, nil
	}
	unlock, acquired, err := w.locker.TryAdvisoryLock(ctx, w.lockKey)
	if err != nil {
		return nil, false, fmt.Errorf("acquire advisory lock: %w", err)
	}
	if !acquired {
		return nil, false, nil
	}
	return unlock, true, nil
}
