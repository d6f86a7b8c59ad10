package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"giftvault/internal/storage"
)

// Show prints recent quotes, or recent alert events with --alerts.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show history")
	}
	if closeStore != nil {
		defer closeStore()
	}

	if opts.Alerts {
		return a.showAlertEvents(ctx, store, opts.Limit)
	}
	return a.showQuotes(ctx, store, opts.Limit)
}

func (a *App) showQuotes(ctx context.Context, store *storage.Store, limit int) error {
	quotes, err := store.ListRecentQuotes(ctx, limit)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		fmt.Fprintln(os.Stdout, "no quotes found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tID\tBrand\tRate%\tIndex\tEffective\tTier")

	for _, q := range quotes {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			q.CreatedAt.UTC().Format(time.RFC3339),
			q.ID.String(),
			q.Brand,
			q.RatePct,
			q.CoinPriceIndex,
			q.EffectiveRate.StringFixed(2),
			q.TierLabel,
		)
	}

	return writer.Flush()
}

func (a *App) showAlertEvents(ctx context.Context, store *storage.Store, limit int) error {
	events, err := store.ListRecentAlertEvents(ctx, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(os.Stdout, "no alert events found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tPrincipal\tAsset\tObserved\tThreshold\tDirection\tChannels")

	for _, e := range events {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.Principal,
			e.Asset,
			e.Observed.StringFixed(2),
			e.Threshold.StringFixed(2),
			e.Direction,
			strings.Join(e.Channels, ","),
		)
	}

	return writer.Flush()
}
