package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"giftvault/internal/quote"
	"giftvault/internal/ranking"
)

// QuoteCard issues a rate-locked quote and prints it.
func (a *App) QuoteCard(ctx context.Context, brand string, amountCents int64) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if closeStore != nil {
		defer closeStore()
	}

	var quoteStore quote.Store
	if store != nil {
		quoteStore = store
	}

	c, err := a.buildCore(quoteStore)
	if err != nil {
		return err
	}

	q, err := c.sell.Quote(ctx, brand, amountCents)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tBrand\tRate%\tIndex\tEffective\tTier\tIssued (UTC)")
	fmt.Fprintf(writer, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
		q.ID.String(), q.Brand, q.RatePct, q.CoinPriceIndex,
		q.EffectiveRate.StringFixed(2), q.TierLabel,
		q.CreatedAt.Format(time.RFC3339))
	return writer.Flush()
}

// PayoutQuote redeems a stored quote and prints the payout. It requires the
// database, since one-shot invocations share no process memory.
func (a *App) PayoutQuote(ctx context.Context, id uuid.UUID, amountCents int64) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot look up quotes")
	}
	if closeStore != nil {
		defer closeStore()
	}

	c, err := a.buildCore(store)
	if err != nil {
		return err
	}

	payout, err := c.sell.Redeem(ctx, id, amountCents)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "payout: %s\n", decimal.NewFromInt(payout).Div(decimal.NewFromInt(100)).StringFixed(2))
	return nil
}

// Tiers prints the effective rate table for a brand.
func (a *App) Tiers(brand string) error {
	c, err := a.buildCore(nil)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Tier\tKind\tRate")
	for _, tier := range c.tables.EffectiveTable(brand) {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", tier.Label(), tier.Kind, tier.Rate.StringFixed(2))
	}
	return writer.Flush()
}

// Rank orders the given brands by best available rate and prints them.
func (a *App) Rank(brands []string) error {
	c, err := a.buildCore(nil)
	if err != nil {
		return err
	}

	cards := make([]ranking.GiftCard, 0, len(brands))
	for i, brand := range brands {
		cards = append(cards, ranking.GiftCard{ID: fmt.Sprintf("card-%d", i+1), Brand: brand})
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "#\tBrand\tBest")
	for i, rc := range c.ranker.Rank(cards) {
		fmt.Fprintf(writer, "%d\t%s\t%s\n", i+1, rc.Card.Brand, rc.Label)
	}
	return writer.Flush()
}

// LedgerList prints the local transaction log.
func (a *App) LedgerList() error {
	c, err := a.buildCore(nil)
	if err != nil {
		return err
	}

	entries := c.ledger.List()
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "no transactions recorded")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Time (UTC)\tID\tType\tAmount\tCurrency\tStatus")
	for _, e := range entries {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Format(time.RFC3339), e.ID, e.Type,
			e.Amount.StringFixed(2), e.Currency, e.Status)
	}
	return writer.Flush()
}

// LedgerClear drops the local transaction log.
func (a *App) LedgerClear() error {
	c, err := a.buildCore(nil)
	if err != nil {
		return err
	}
	c.ledger.Clear()
	fmt.Fprintln(os.Stdout, "transaction log cleared")
	return nil
}

// AlertsList prints a principal's stored rate alerts.
func (a *App) AlertsList(principal string) error {
	c, err := a.buildCore(nil)
	if err != nil {
		return err
	}

	list := c.alerts.List(principal)
	if len(list) == 0 {
		fmt.Fprintln(os.Stdout, "no alerts configured")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tAsset\tKind\tDirection\tThreshold\tEnabled\tLast triggered (UTC)")
	for _, al := range list {
		last := "-"
		if al.LastTriggeredAt != nil {
			last = al.LastTriggeredAt.Format(time.RFC3339)
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%t\t%s\n",
			al.ID, al.Asset, al.Kind, al.Direction,
			al.Threshold.StringFixed(2), al.Enabled, last)
	}
	return writer.Flush()
}

// WithdrawStatus prints the derived processing phase for a withdrawal
// created at the given time.
func (a *App) WithdrawStatus(createdAt time.Time) error {
	c, err := a.buildCore(nil)
	if err != nil {
		return err
	}

	est := c.estimator.Estimate(createdAt, time.Now().UTC())
	fmt.Fprintf(os.Stdout, "%s: %s\n", est.Phase, est.Label)
	return nil
}
