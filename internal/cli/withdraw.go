package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var withdrawCreatedAt string

var withdrawCmd = &cobra.Command{
	Use:   "withdraw-status",
	Short: "Estimate the processing phase of a withdrawal",
	RunE: func(cmd *cobra.Command, args []string) error {
		createdAt, err := time.Parse(time.RFC3339, withdrawCreatedAt)
		if err != nil {
			return fmt.Errorf("invalid --created-at value: %w", err)
		}
		return getApp().WithdrawStatus(createdAt)
	},
}

func init() {
	withdrawCmd.Flags().StringVar(&withdrawCreatedAt, "created-at", "", "Withdrawal creation time (RFC3339)")
	_ = withdrawCmd.MarkFlagRequired("created-at")
}
