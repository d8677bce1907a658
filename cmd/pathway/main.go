package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/steveyegge/pathway/internal/config"
	"github.com/steveyegge/pathway/internal/engine"
	"github.com/steveyegge/pathway/internal/logging"
	"github.com/steveyegge/pathway/internal/rules"
	"github.com/steveyegge/pathway/internal/storage"
	"github.com/steveyegge/pathway/internal/types"
)

var (
	cfg       config.Config
	store     storage.Storage
	eng       *engine.Engine
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "pathway",
	Short: "Asylum case timeline: deadlines, next steps, and warnings",
	Long: `Pathway turns what you know about an asylum case into a ranked list of
next steps and deadlines, and keeps it current as facts change.

This tool gives general information, not legal advice.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.FromEnv()
		if err != nil {
			return err
		}
		if err := applyFlagOverrides(cmd); err != nil {
			return err
		}

		logCloser, err = logging.Init(logging.Config{
			Dir:   cfg.LogDir,
			Debug: cfg.Debug,
			JSON:  cfg.LogJSON,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}

		table := rules.Default()
		overlay, err := rules.LoadOverlay(cfg.RulesFile)
		if err != nil {
			return err
		}
		if table, err = table.Apply(overlay); err != nil {
			return fmt.Errorf("invalid rules overlay: %w", err)
		}

		alertCfg := cfg.AlertConfig()
		eng = engine.New(engine.Config{Table: table, Alerts: &alertCfg})

		store, err = storage.NewStorage(cmd.Context(), &storage.Config{
			Backend: cfg.Store,
			Path:    cfg.DBPath,
		})
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Plan database path (overrides PATHWAY_DB_PATH)")
	rootCmd.PersistentFlags().String("today", "", "Treat this date as today, YYYY-MM-DD (overrides PATHWAY_TODAY)")
	rootCmd.PersistentFlags().Bool("json", false, "Print machine-readable JSON")
}

func applyFlagOverrides(cmd *cobra.Command) error {
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.DBPath = db
	} else if found, err := storage.DiscoverDatabase(); err == nil {
		cfg.DBPath = found
	}
	if today, _ := cmd.Flags().GetString("today"); today != "" {
		d, err := types.ParseDate(today)
		if err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
		cfg.Today = d
	}
	return cfg.Validate()
}

// today is the injectable clock every command uses.
func today() types.Date {
	return cfg.TodayOr(time.Now())
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

// loadPlan loads the stored plan and refreshes statuses against today, so a
// step that became overdue since the last save shows as overdue.
func loadPlan(ctx context.Context) (*types.Plan, error) {
	plan, err := store.LoadPlan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	if plan == nil {
		return nil, fmt.Errorf("no plan yet. Run 'pathway intake' or 'pathway derive --facts FILE' first")
	}
	return eng.Refresh(plan, today()), nil
}

// savePlan persists the plan and records an activity event for it.
func savePlan(ctx context.Context, plan *types.Plan, event types.PlanEventType, stepID string, data map[string]interface{}) error {
	if err := store.SavePlan(ctx, plan); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}
	ev := &types.PlanEvent{
		PlanID: plan.ID,
		Type:   event,
		StepID: stepID,
		Data:   data,
	}
	if err := store.RecordEvent(ctx, ev); err != nil {
		// The plan itself was saved; a missing activity entry is not fatal.
		fmt.Fprintf(os.Stderr, "Warning: failed to record activity: %v\n", err)
		return nil
	}
	if n, err := store.PruneEvents(ctx, cfg.EventLimit); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to prune activity log: %v\n", err)
	} else if n > 0 {
		slog.Info("pruned activity log", "deleted", n, "kept", cfg.EventLimit)
	}
	return nil
}

// lockPlan takes the plan lock for a load-modify-save cycle. The returned
// func releases it.
func lockPlan(holder string) func() {
	lockPath, err := storage.AcquireLock(cfg.DBPath, holder)
	if errors.Is(err, storage.ErrLocked) {
		fatal("%v\nAnother pathway command is changing the plan. Try again when it finishes.", err)
	}
	if err != nil {
		fatal("%v", err)
	}
	return func() {
		if err := storage.ReleaseLock(lockPath); err != nil {
			slog.Warn("failed to release plan lock", "path", lockPath, "error", err)
		}
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
