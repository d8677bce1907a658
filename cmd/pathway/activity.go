package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/steveyegge/pathway/internal/types"
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent changes to the plan",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		events, err := store.GetEvents(cmd.Context(), limit)
		if err != nil {
			fatal("fetching activity: %v", err)
		}
		if jsonOutput(cmd) {
			printJSON(events)
			return
		}
		if len(events) == 0 {
			fmt.Println("No activity yet.")
			return
		}

		// Oldest first reads naturally in a terminal
		for i := len(events) - 1; i >= 0; i-- {
			printEvent(events[i])
		}
	},
}

func init() {
	activityCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	rootCmd.AddCommand(activityCmd)
}

func printEvent(ev *types.PlanEvent) {
	ts := ev.Timestamp.Local().Format("2006-01-02 15:04")
	var what string
	switch ev.Type {
	case types.EventPlanDerived:
		what = yellow("plan derived")
	case types.EventStepCompleted:
		what = green("completed")
	case types.EventStepReopened:
		what = cyan("reopened")
	case types.EventDueDateChanged:
		what = cyan("due date changed")
	default:
		what = string(ev.Type)
	}

	line := fmt.Sprintf("%s  %s", gray(ts), what)
	if ev.StepID != "" {
		line += " " + ev.StepID
	}
	if meta := formatEventData(ev.Data); meta != "" {
		line += " " + gray(meta)
	}
	fmt.Println(line)
}

// formatEventData renders event data as key=value pairs in key order.
func formatEventData(data map[string]interface{}) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := data[k].(type) {
		case []interface{}:
			strs := make([]string, 0, len(v))
			for _, item := range v {
				strs = append(strs, fmt.Sprint(item))
			}
			parts = append(parts, fmt.Sprintf("%s=%s", k, strings.Join(strs, ",")))
		case []string:
			parts = append(parts, fmt.Sprintf("%s=%s", k, strings.Join(v, ",")))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}
