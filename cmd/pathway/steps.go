package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/steveyegge/pathway/internal/engine"
	"github.com/steveyegge/pathway/internal/types"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the steps in the plan",
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := loadPlan(cmd.Context())
		if err != nil {
			fatal("%v", err)
		}

		steps := plan.Steps
		if bundleID, _ := cmd.Flags().GetString("bundle"); bundleID != "" {
			if _, ok := eng.Table().Get(bundleID); !ok {
				fatal("unknown bundle %q", bundleID)
			}
			steps = engine.GetStepsByBundle(plan, bundleID)
		}
		if hideDone, _ := cmd.Flags().GetBool("open"); hideDone {
			open := steps[:0:0]
			for _, s := range steps {
				if !s.Completed() {
					open = append(open, s)
				}
			}
			steps = open
		}

		if jsonOutput(cmd) {
			printJSON(steps)
			return
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		printSteps(steps, today(), verbose)
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete STEP",
	Short: "Mark a step as completed",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		editStep(cmd, args[0], types.EventStepCompleted, nil, eng.MarkStepComplete)
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen STEP",
	Short: "Mark a completed step as not done",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		editStep(cmd, args[0], types.EventStepReopened, nil, eng.ReopenStep)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle STEP",
	Short: "Flip a step between done and not done",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		editStep(cmd, args[0], "", nil, eng.ToggleStep)
	},
}

var dueCmd = &cobra.Command{
	Use:   "due STEP YYYY-MM-DD",
	Short: "Change the due date of a step that allows it",
	Long: `Change the due date of a step whose date comes from you, such as a
hearing or interview date. Legally fixed deadlines cannot be changed.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		date, err := types.ParseDate(args[1])
		if err != nil {
			fatal("%v", err)
		}
		if date.IsZero() {
			fatal("a due date is required")
		}
		update := func(plan *types.Plan, stepID string, now types.Date) (*types.Plan, error) {
			return eng.UpdateStepDueDate(plan, stepID, date, now)
		}
		editStep(cmd, args[0], types.EventDueDateChanged, map[string]interface{}{"due_date": date.String()}, update)
	},
}

func init() {
	stepsCmd.Flags().StringP("bundle", "b", "", "Only show steps from this bundle")
	stepsCmd.Flags().Bool("open", false, "Hide completed steps")
	stepsCmd.Flags().BoolP("verbose", "v", false, "Show descriptions and links")

	rootCmd.AddCommand(stepsCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(reopenCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(dueCmd)
}

type stepEdit func(plan *types.Plan, stepID string, now types.Date) (*types.Plan, error)

// editStep applies one engine edit under the plan lock and prints the step.
func editStep(cmd *cobra.Command, stepID string, event types.PlanEventType, data map[string]interface{}, edit stepEdit) {
	defer lockPlan("pathway " + cmd.Name())()

	updated, changed, err := applyStepEdit(cmd.Context(), stepID, event, data, edit)
	switch {
	case errors.Is(err, engine.ErrStepNotFound):
		fatal("no step %q in the plan. Run 'pathway steps' to list step ids", stepID)
	case errors.Is(err, engine.ErrDateNotEditable):
		fatal("step %q has a fixed deadline and its date cannot be changed", stepID)
	case err != nil:
		fatal("%v", err)
	}

	if jsonOutput(cmd) {
		printJSON(updated.Step(stepID))
		return
	}
	if s := updated.Step(stepID); s != nil {
		if changed {
			fmt.Printf("%s Updated step\n", green("✓"))
		} else {
			fmt.Printf("%s Nothing to change\n", gray("-"))
		}
		printStep(s, today(), false)
	}
}

// applyStepEdit loads the plan, applies edit, and saves only when the edit
// succeeded and changed something. The engine returns the input plan itself
// for a no-op, so nothing is saved or recorded then. An empty event is
// recorded as completed or reopened by the step's new state.
func applyStepEdit(ctx context.Context, stepID string, event types.PlanEventType, data map[string]interface{}, edit stepEdit) (*types.Plan, bool, error) {
	plan, err := loadPlan(ctx)
	if err != nil {
		return nil, false, err
	}

	updated, err := edit(plan, stepID, today())
	if err != nil {
		return plan, false, err
	}
	if updated == plan {
		return plan, false, nil
	}

	if event == "" {
		event = types.EventStepReopened
		if s := updated.Step(stepID); s != nil && s.Completed() {
			event = types.EventStepCompleted
		}
	}
	if err := savePlan(ctx, updated, event, stepID, data); err != nil {
		return plan, false, err
	}
	return updated, true, nil
}
