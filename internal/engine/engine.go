// Package engine derives a case's plan from its facts.
//
// Every operation takes the current plan as a value and returns a new one;
// the engine holds no plan state and performs no I/O. Loading and saving the
// plan, and serializing concurrent edits to it, belong to the caller.
//
// Derivation pipeline:
//
//	select bundles -> generate steps -> filter by visibility -> merge with
//	previous plan -> update statuses -> rank -> compile alerts
package engine

import (
	"log/slog"
	"time"

	"github.com/steveyegge/pathway/internal/alerts"
	"github.com/steveyegge/pathway/internal/rules"
	"github.com/steveyegge/pathway/internal/types"
)

// Config holds engine dependencies. Zero fields get defaults.
type Config struct {
	// Table is the rule table (default: rules.Default())
	Table *rules.Table

	// Logger receives rule evaluation failures (default: slog.Default())
	Logger *slog.Logger

	// Now stamps completion times and LastUpdated (default: time.Now)
	Now func() time.Time

	// Alerts holds alert severity thresholds (default: alerts.DefaultConfig())
	Alerts *alerts.Config
}

// Engine runs derivations against a fixed rule table.
type Engine struct {
	table  *rules.Table
	logger *slog.Logger
	now    func() time.Time
	alerts alerts.Config
}

// New creates an engine.
func New(cfg Config) *Engine {
	e := &Engine{
		table:  cfg.Table,
		logger: cfg.Logger,
		now:    cfg.Now,
		alerts: alerts.DefaultConfig(),
	}
	if e.table == nil {
		e.table = rules.Default()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if cfg.Alerts != nil {
		e.alerts = *cfg.Alerts
	}
	return e
}

// Table returns the rule table the engine evaluates.
func (e *Engine) Table() *rules.Table {
	return e.table
}

// DerivePlan rebuilds the plan from scratch for the facts as of today.
//
// prev may be nil. Completed steps in prev stay completed with the same
// completion date; incomplete steps of bundles that no longer trigger are
// dropped. prev is never modified.
func (e *Engine) DerivePlan(facts types.CaseFacts, prev *types.Plan, today types.Date) *types.Plan {
	in := rules.Input{Facts: &facts, Previous: prev, Today: today}

	// Gates are checked against the visible steps only. Completion is
	// restored from the visible steps and the hidden completed ones.
	var previous []types.Step
	if prev != nil {
		previous = prev.Steps
	}
	history := completionHistory(prev)

	active := e.Select(in)
	candidates, activeIDs := e.Generate(active, in)

	steps := Merge(FilterVisible(candidates, previous), history)
	steps = append(steps, FilterVisible(Retained(candidates, history), previous)...)
	hidden := Hidden(history, steps)
	UpdateStatuses(steps, today)
	SortSteps(steps)

	now := e.now().UTC()
	plan := &types.Plan{
		CaseFacts:       facts,
		ActiveBundleIDs: activeIDs,
		Steps:           steps,
		HiddenSteps:     hidden,
		CreatedAt:       now,
		LastUpdated:     now,
	}
	if prev != nil {
		plan.ID = prev.ID
		if !prev.CreatedAt.IsZero() {
			plan.CreatedAt = prev.CreatedAt
		}
	}
	plan.Alerts = alerts.Compile(&plan.CaseFacts, plan, today, e.alerts)

	e.logger.Debug("plan derived",
		"bundles", len(activeIDs),
		"steps", len(steps),
		"alerts", len(plan.Alerts),
		"today", today.String())
	return plan
}

// GetAlerts compiles alerts for the plan and facts as of today.
func (e *Engine) GetAlerts(plan *types.Plan, facts types.CaseFacts, today types.Date) []types.Alert {
	return alerts.Compile(&facts, plan, today, e.alerts)
}
