package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/steveyegge/pathway/internal/intake"
	"github.com/steveyegge/pathway/internal/types"
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Answer questions about the case and build the plan",
	Long: `Walk through a short questionnaire about the case, then derive the plan.

When a plan already exists, its facts are offered as defaults and completed
steps are kept.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		defer lockPlan("pathway intake")()

		prev, err := store.LoadPlan(ctx)
		if err != nil {
			fatal("loading plan: %v", err)
		}
		var start *types.CaseFacts
		if prev != nil {
			start = &prev.CaseFacts
		}

		rl, err := intake.NewReadline()
		if err != nil {
			fatal("starting prompt: %v", err)
		}
		defer rl.Close()

		facts, err := intake.NewQuestionnaire(rl, os.Stdout).Run(start)
		if errors.Is(err, intake.ErrAborted) {
			fmt.Println("Intake cancelled. Nothing was saved.")
			return
		}
		if err != nil {
			fatal("%v", err)
		}

		if out, _ := cmd.Flags().GetString("save-facts"); out != "" {
			if err := intake.SaveFacts(out, facts); err != nil {
				fatal("saving facts: %v", err)
			}
		}

		derive(cmd, facts, prev)
	},
}

func init() {
	intakeCmd.Flags().String("save-facts", "", "Also write the answers to this YAML file")
	rootCmd.AddCommand(intakeCmd)
}
