// Package jsonfile stores the plan as plan.json and the activity log as
// JSON Lines in a directory.
package jsonfile

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/steveyegge/pathway/internal/types"
)

const (
	planFileName   = "plan.json"
	eventsFileName = "events.jsonl"
)

// Store keeps plan files in a directory
type Store struct {
	dir string
}

// New creates the directory if needed and returns a store rooted there
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// LoadPlan reads plan.json, returning nil if it does not exist
func (s *Store) LoadPlan(ctx context.Context) (*types.Plan, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, planFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", planFileName, err)
	}

	var plan types.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", planFileName, err)
	}
	return &plan, nil
}

// SavePlan atomically writes plan.json
func (s *Store) SavePlan(ctx context.Context, plan *types.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	return s.writeAtomic(planFileName, data)
}

// RecordEvent appends one JSON line to events.jsonl
func (s *Store) RecordEvent(ctx context.Context, event *types.PlanEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	line = append(line, '\n')

	f, err := os.OpenFile(filepath.Join(s.dir, eventsFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", eventsFileName, err)
	}
	defer f.Close()

	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

// GetEvents returns the most recent events, newest first. limit <= 0 means no limit.
func (s *Store) GetEvents(ctx context.Context, limit int) ([]*types.PlanEvent, error) {
	f, err := os.Open(filepath.Join(s.dir, eventsFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open %s: %w", eventsFileName, err)
	}
	defer f.Close()

	var events []*types.PlanEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var ev types.PlanEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("failed to parse event: %w", err)
		}
		events = append(events, &ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", eventsFileName, err)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// PruneEvents keeps the newest keep events and rewrites events.jsonl.
// keep <= 0 keeps everything. Returns the number of events deleted.
func (s *Store) PruneEvents(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	events, err := s.GetEvents(ctx, 0)
	if err != nil {
		return 0, err
	}
	if len(events) <= keep {
		return 0, nil
	}
	kept := events[:keep]

	// Rewrite oldest first so appends stay in chronological order
	var buf []byte
	for i := len(kept) - 1; i >= 0; i-- {
		line, err := json.Marshal(kept[i])
		if err != nil {
			return 0, fmt.Errorf("failed to marshal event: %w", err)
		}
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	if err := s.writeAtomic(eventsFileName, buf); err != nil {
		return 0, err
	}
	return len(events) - keep, nil
}

// writeAtomic replaces a file in the store directory via temp file + rename.
func (s *Store) writeAtomic(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	tmpPath := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Close is a no-op; files are not held open between calls
func (s *Store) Close() error {
	return nil
}
