package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	quoteBrand       string
	quoteAmountCents int64
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Issue a rate-locked quote for a gift card sale",
	RunE: func(cmd *cobra.Command, args []string) error {
		if quoteBrand == "" {
			return fmt.Errorf("--brand is required")
		}
		if quoteAmountCents <= 0 {
			return fmt.Errorf("--amount-cents must be positive")
		}
		return getApp().QuoteCard(cmd.Context(), quoteBrand, quoteAmountCents)
	},
}

var (
	payoutQuoteID     string
	payoutAmountCents int64
)

var payoutCmd = &cobra.Command{
	Use:   "payout",
	Short: "Compute the locked payout for a stored quote",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(payoutQuoteID)
		if err != nil {
			return fmt.Errorf("invalid --quote value: %w", err)
		}
		if payoutAmountCents <= 0 {
			return fmt.Errorf("--amount-cents must be positive")
		}
		return getApp().PayoutQuote(cmd.Context(), id, payoutAmountCents)
	},
}

func init() {
	quoteCmd.Flags().StringVar(&quoteBrand, "brand", "", "Gift card brand")
	quoteCmd.Flags().Int64Var(&quoteAmountCents, "amount-cents", 0, "Card amount in cents")

	payoutCmd.Flags().StringVar(&payoutQuoteID, "quote", "", "Quote id")
	payoutCmd.Flags().Int64Var(&payoutAmountCents, "amount-cents", 0, "Card amount in cents")
}
