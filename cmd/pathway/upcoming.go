package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/steveyegge/pathway/internal/engine"
)

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List steps due soon",
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := loadPlan(cmd.Context())
		if err != nil {
			fatal("%v", err)
		}
		days, _ := cmd.Flags().GetInt("days")
		if days <= 0 {
			days = cfg.UpcomingDays
		}

		now := today()
		steps := engine.GetUpcomingSteps(plan, now, days)
		if jsonOutput(cmd) {
			printJSON(steps)
			return
		}
		fmt.Printf("Due in the next %d days:\n", days)
		printSteps(steps, now, false)
	},
}

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List steps past their due date",
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := loadPlan(cmd.Context())
		if err != nil {
			fatal("%v", err)
		}
		now := today()
		steps := engine.GetOverdueSteps(plan, now)
		if jsonOutput(cmd) {
			printJSON(steps)
			return
		}
		printSteps(steps, now, true)
	},
}

func init() {
	upcomingCmd.Flags().IntP("days", "d", 0, "Window in days (default from PATHWAY_UPCOMING_DAYS)")
	rootCmd.AddCommand(upcomingCmd)
	rootCmd.AddCommand(overdueCmd)
}
