// Package rules holds the rule table: an ordered list of bundles, each a
// named legal scenario with a trigger predicate and a step generator.
//
// Bundles are plain records holding two pure functions. Adding a scenario
// means appending a Bundle, not touching the engine.
package rules

import (
	"fmt"
	"sort"

	"github.com/steveyegge/pathway/internal/types"
)

// Input is everything a predicate or generator may look at.
// Previous is nil on the first derivation.
type Input struct {
	Facts    *types.CaseFacts
	Previous *types.Plan
	Today    types.Date
}

// TriggerFunc decides whether a bundle is active for the input.
type TriggerFunc func(in Input) bool

// GenerateFunc materializes the bundle's steps. It must not panic for any
// input that satisfied the bundle's trigger, but may return nothing.
type GenerateFunc func(in Input) []types.Step

// Bundle is one rule-table entry.
type Bundle struct {
	ID          string
	Name        string
	Description string
	// Priority is the legacy phase order (lower = earlier). It does not
	// affect step ordering.
	Priority int
	Trigger  TriggerFunc
	Generate GenerateFunc
}

// Table is an ordered, immutable set of bundles with unique ids.
type Table struct {
	bundles []Bundle
	byID    map[string]int
}

// NewTable validates the bundles and returns a table that evaluates them in
// the given order. Duplicate or empty ids and missing functions are
// configuration errors.
func NewTable(bundles ...Bundle) (*Table, error) {
	t := &Table{
		bundles: make([]Bundle, 0, len(bundles)),
		byID:    make(map[string]int, len(bundles)),
	}
	for i, b := range bundles {
		if b.ID == "" {
			return nil, fmt.Errorf("bundle %d: id is required", i)
		}
		if _, exists := t.byID[b.ID]; exists {
			return nil, fmt.Errorf("bundle %q already registered", b.ID)
		}
		if b.Trigger == nil {
			return nil, fmt.Errorf("bundle %q: trigger is required", b.ID)
		}
		if b.Generate == nil {
			return nil, fmt.Errorf("bundle %q: generator is required", b.ID)
		}
		if b.Name == "" {
			b.Name = b.ID
		}
		t.byID[b.ID] = len(t.bundles)
		t.bundles = append(t.bundles, b)
	}
	return t, nil
}

// MustNewTable is NewTable for static tables; it panics on a bad table.
func MustNewTable(bundles ...Bundle) *Table {
	t, err := NewTable(bundles...)
	if err != nil {
		panic(err)
	}
	return t
}

// Bundles returns the bundles in evaluation order.
func (t *Table) Bundles() []Bundle {
	return append([]Bundle(nil), t.bundles...)
}

// Get returns a bundle by id.
func (t *Table) Get(id string) (Bundle, bool) {
	i, ok := t.byID[id]
	if !ok {
		return Bundle{}, false
	}
	return t.bundles[i], true
}

// Len returns the number of bundles.
func (t *Table) Len() int {
	return len(t.bundles)
}

// ByPriority returns the bundles in legacy phase order, ties kept in table order.
func (t *Table) ByPriority() []Bundle {
	out := t.Bundles()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}
