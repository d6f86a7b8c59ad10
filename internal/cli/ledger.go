package cli

import (
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the local transaction log",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().LedgerList()
	},
}

var ledgerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop all local transaction entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().LedgerClear()
	},
}

func init() {
	ledgerCmd.AddCommand(ledgerClearCmd)
}
