package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tiersBrand string

var tiersCmd = &cobra.Command{
	Use:   "tiers",
	Short: "Print the effective rate table for a brand",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tiersBrand == "" {
			return fmt.Errorf("--brand is required")
		}
		return getApp().Tiers(tiersBrand)
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank [brand]...",
	Short: "Order gift card brands by best available rate",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Rank(args)
	},
}

func init() {
	tiersCmd.Flags().StringVar(&tiersBrand, "brand", "", "Gift card brand")
}
