package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/steveyegge/pathway/internal/deadlines"
	"github.com/steveyegge/pathway/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a summary of the plan",
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := loadPlan(cmd.Context())
		if err != nil {
			fatal("%v", err)
		}
		if jsonOutput(cmd) {
			printJSON(struct {
				Summary types.Summary `json:"summary"`
				Alerts  []types.Alert `json:"alerts"`
			}{plan.Summarize(), plan.Alerts})
			return
		}
		printSummary(plan, today())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printSummary(plan *types.Plan, now types.Date) {
	sum := plan.Summarize()
	facts := &plan.CaseFacts

	if deadline := deadlines.OneYearDeadline(facts); !deadline.IsZero() && !facts.Filed() {
		label := "One-year filing deadline"
		if deadlines.IsExtended(facts) {
			label += " (extended)"
		}
		fmt.Printf("%s: %s\n", bold(label), dueLabel(deadline, now))
	}

	fmt.Printf("Steps: %d total, %s, %d pending, %s\n",
		sum.Total,
		red(fmt.Sprintf("%d overdue", sum.Overdue)),
		sum.Pending,
		green(fmt.Sprintf("%d completed", sum.Completed)))
	if sum.NextDue != nil {
		fmt.Printf("Next due: %s, %s\n", bold(sum.NextDue.Title), dueLabel(sum.NextDue.DueDate, now))
	}

	urgent := 0
	for _, a := range plan.Alerts {
		if a.Type == types.AlertCritical || a.Type == types.AlertLegalWarning {
			urgent++
		}
	}
	if urgent > 0 {
		fmt.Printf("\n%s\n", red(fmt.Sprintf("%d urgent alert(s). Run 'pathway alerts' for details.", urgent)))
	}
}
