package app

import (
	"context"
	"errors"
	"time"

	"giftvault/internal/fetcher"
	"giftvault/internal/service"
)

// SimulateAlert evaluates every stored alert against a forced index value
// and delivers any that fire. It exercises the full watch path minus the
// live index sources.
func (a *App) SimulateAlert(ctx context.Context, opts SimulateOptions) error {
	if !a.Config.Alerting.Enabled {
		return errors.New("alerting is not enabled")
	}
	if opts.Index <= 0 {
		return errors.New("index must be positive")
	}

	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("no alert channel configured")
	}

	c, err := a.buildCore(nil)
	if err != nil {
		return err
	}

	watch := service.NewWatch(a.Config, nil, &fetcher.Static{Value: opts.Index}, c.tables, c.alerts, c.prefs, nil, notifier, a.Logger)
	return watch.ProcessTick(ctx, time.Now().UTC())
}
