package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/steveyegge/pathway/internal/types"
)

var bundlesCmd = &cobra.Command{
	Use:   "bundles",
	Short: "List rule bundles and which are active",
	Run: func(cmd *cobra.Command, args []string) {
		plan, err := store.LoadPlan(cmd.Context())
		if err != nil {
			fatal("loading plan: %v", err)
		}
		if plan == nil {
			plan = &types.Plan{}
		}

		type row struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Description string `json:"description,omitempty"`
			Priority    int    `json:"priority"`
			Active      bool   `json:"active"`
		}
		var rows []row
		for _, b := range eng.Table().ByPriority() {
			rows = append(rows, row{b.ID, b.Name, b.Description, b.Priority, plan.HasBundle(b.ID)})
		}

		if jsonOutput(cmd) {
			printJSON(rows)
			return
		}
		for _, r := range rows {
			mark := gray("·")
			if r.Active {
				mark = green("●")
			}
			fmt.Printf("%s %-24s %s\n", mark, r.ID, r.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(bundlesCmd)
}
