package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"giftvault/internal/app"
)

var simulateIndex int64

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Evaluate stored alerts against a forced index value",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateIndex <= 0 {
			return errors.New("--index must be greater than 0")
		}
		return getApp().SimulateAlert(cmd.Context(), app.SimulateOptions{Index: simulateIndex})
	},
}

func init() {
	simulateCmd.Flags().Int64Var(&simulateIndex, "index", 0, "Coin price index to force")
}
