package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/steveyegge/pathway/internal/deadlines"
	"github.com/steveyegge/pathway/internal/types"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal("encoding JSON: %v", err)
	}
}

func statusMark(s types.StepStatus) string {
	switch s {
	case types.StepCompleted:
		return green("✓")
	case types.StepOverdue:
		return red("!")
	default:
		return "○"
	}
}

func priorityLabel(p types.StepPriority) string {
	switch p {
	case types.PriorityCritical:
		return red("critical")
	case types.PriorityHigh:
		return yellow("high")
	case types.PriorityLow:
		return gray("low")
	default:
		return string(p)
	}
}

func dueLabel(d types.Date, now types.Date) string {
	if d.IsZero() {
		return gray("no date")
	}
	days := deadlines.DaysUntil(d, now)
	switch {
	case days < 0:
		return red(fmt.Sprintf("%s (%s ago)", d, plural(-days, "day")))
	case days == 0:
		return red(fmt.Sprintf("%s (today)", d))
	case days <= 30:
		return yellow(fmt.Sprintf("%s (in %s)", d, plural(days, "day")))
	default:
		return fmt.Sprintf("%s (in %s)", d, plural(days, "day"))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func printStep(s *types.Step, now types.Date, verbose bool) {
	title := s.Title
	if s.Completed() {
		title = gray(title)
	}
	fmt.Printf("%s %s  %s\n", statusMark(s.Status), bold(title), gray(s.ID))
	if s.Completed() {
		if !s.CompletedDate.IsZero() {
			fmt.Printf("    completed %s\n", s.CompletedDate.Format(types.DateLayout))
		}
		return
	}
	fmt.Printf("    due %s  priority %s", dueLabel(s.DueDate, now), priorityLabel(s.Priority))
	if s.IsEditableDate {
		fmt.Printf("  %s", gray("(date editable)"))
	}
	fmt.Println()
	if !verbose {
		return
	}
	if s.Description != "" {
		fmt.Printf("    %s\n", s.Description)
	}
	for _, l := range s.Links {
		fmt.Printf("    %s %s\n", cyan("→"), fmt.Sprintf("%s: %s", l.Title, l.URL))
	}
}

func printSteps(steps []types.Step, now types.Date, verbose bool) {
	if len(steps) == 0 {
		fmt.Println("No steps.")
		return
	}
	for i := range steps {
		printStep(&steps[i], now, verbose)
	}
}

func alertMark(t types.AlertType) string {
	switch t {
	case types.AlertCritical:
		return red("CRITICAL")
	case types.AlertLegalWarning:
		return red("LEGAL")
	case types.AlertWarning:
		return yellow("WARNING")
	default:
		return cyan("INFO")
	}
}

func printAlerts(alerts []types.Alert) {
	if len(alerts) == 0 {
		fmt.Println("No alerts.")
		return
	}
	for _, a := range alerts {
		fmt.Printf("[%s] %s\n", alertMark(a.Type), bold(a.Title))
		if a.Message != "" {
			fmt.Printf("    %s\n", a.Message)
		}
		var tags []string
		if a.ActionRequired {
			tags = append(tags, "action required")
		}
		if a.IsCourtRelated {
			tags = append(tags, "court")
		}
		if a.RequiresAttorney {
			tags = append(tags, "talk to an attorney")
		}
		if len(tags) > 0 {
			fmt.Printf("    %s\n", gray(strings.Join(tags, ", ")))
		}
	}
}
