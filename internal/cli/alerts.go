package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var alertsPrincipal string

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List a principal's rate alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if alertsPrincipal == "" {
			return fmt.Errorf("--principal is required")
		}
		return getApp().AlertsList(alertsPrincipal)
	},
}

func init() {
	alertsCmd.Flags().StringVar(&alertsPrincipal, "principal", "", "Principal whose alerts to list")
}
