package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/steveyegge/pathway/internal/intake"
	"github.com/steveyegge/pathway/internal/types"
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Derive or refresh the plan from a facts file",
	Long: `Read case facts from a YAML file and derive the plan.

Completed steps from the existing plan stay completed, and due dates you
edited are kept while the step still allows editing.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		path, _ := cmd.Flags().GetString("facts")
		facts, err := intake.LoadFacts(path)
		if err != nil {
			fatal("%v", err)
		}

		defer lockPlan("pathway derive")()
		prev, err := store.LoadPlan(ctx)
		if err != nil {
			fatal("loading plan: %v", err)
		}
		derive(cmd, facts, prev)
	},
}

func init() {
	deriveCmd.Flags().StringP("facts", "f", "", "Path to the case facts YAML file")
	_ = deriveCmd.MarkFlagRequired("facts")
	rootCmd.AddCommand(deriveCmd)
}

// derive runs the engine on facts, saves the result and prints a summary.
func derive(cmd *cobra.Command, facts types.CaseFacts, prev *types.Plan) {
	now := today()
	plan := eng.DerivePlan(facts, prev, now)

	data := map[string]interface{}{
		"bundles": plan.ActiveBundleIDs,
		"steps":   len(plan.Steps),
	}
	if err := savePlan(cmd.Context(), plan, types.EventPlanDerived, "", data); err != nil {
		fatal("%v", err)
	}

	if jsonOutput(cmd) {
		printJSON(plan)
		return
	}
	fmt.Printf("%s Plan updated: %d active bundles, %d steps\n\n",
		green("✓"), len(plan.ActiveBundleIDs), len(plan.Steps))
	printSummary(plan, now)
}
