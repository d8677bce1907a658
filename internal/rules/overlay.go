package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// OverlayFile is the structure of a rule-table overlay YAML file.
//
//	disabled:
//	  - parole
//	bundles:
//	  find-attorney:
//	    name: Find legal help
//	    priority: 0
type OverlayFile struct {
	// Bundles to drop from the table
	Disabled []string `yaml:"disabled"`

	// Display overrides keyed by bundle id
	Bundles map[string]BundleOverride `yaml:"bundles"`
}

// BundleOverride replaces display metadata. Predicates and generators are
// code and cannot be overridden from a file.
type BundleOverride struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Priority    *int   `yaml:"priority"`
}

// LoadOverlay reads an overlay file. A missing path returns (nil, nil).
func LoadOverlay(path string) (*OverlayFile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading overlay file: %w", err)
	}
	return ParseOverlay(data)
}

// ParseOverlay parses overlay YAML.
func ParseOverlay(data []byte) (*OverlayFile, error) {
	var overlay OverlayFile
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parsing overlay file: %w", err)
	}
	return &overlay, nil
}

// Apply returns a new table with the overlay applied. Every id the overlay
// names must exist in the table, so a typo fails loudly instead of silently
// leaving a bundle enabled.
func (t *Table) Apply(overlay *OverlayFile) (*Table, error) {
	if overlay == nil {
		return t, nil
	}

	disabled := make(map[string]bool, len(overlay.Disabled))
	for _, id := range overlay.Disabled {
		if _, ok := t.byID[id]; !ok {
			return nil, fmt.Errorf("overlay disables unknown bundle %q", id)
		}
		disabled[id] = true
	}
	for id := range overlay.Bundles {
		if _, ok := t.byID[id]; !ok {
			return nil, fmt.Errorf("overlay overrides unknown bundle %q", id)
		}
	}

	bundles := make([]Bundle, 0, len(t.bundles))
	for _, b := range t.bundles {
		if disabled[b.ID] {
			continue
		}
		if o, ok := overlay.Bundles[b.ID]; ok {
			if o.Name != "" {
				b.Name = o.Name
			}
			if o.Description != "" {
				b.Description = o.Description
			}
			if o.Priority != nil {
				b.Priority = *o.Priority
			}
		}
		bundles = append(bundles, b)
	}
	return NewTable(bundles...)
}
