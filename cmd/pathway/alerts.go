package main

import (
	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show deadline warnings and legal notices",
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := loadPlan(cmd.Context())
		if err != nil {
			fatal("%v", err)
		}
		if jsonOutput(cmd) {
			printJSON(plan.Alerts)
			return
		}
		printAlerts(plan.Alerts)
	},
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}
