package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/steveyegge/pathway/internal/types"
)

const currentPlanKey = "current_plan"

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStorage persists the plan and its activity log in a SQLite database
type SQLiteStorage struct {
	db *sql.DB
}

// New opens (creating if needed) the database at path
func New(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// LoadPlan returns the current plan, or nil if none has been saved
func (s *SQLiteStorage) LoadPlan(ctx context.Context) (*types.Plan, error) {
	var planID string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM config WHERE key = ?`, currentPlanKey).Scan(&planID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read current plan id: %w", err)
	}

	var data string
	err = s.db.QueryRowContext(ctx, `SELECT data FROM plans WHERE id = ?`, planID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("current plan %s is missing", planID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", planID, err)
	}

	var plan types.Plan
	if err := json.Unmarshal([]byte(data), &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", planID, err)
	}
	return &plan, nil
}

// SavePlan writes the plan and makes it current. A plan without an id is
// assigned one.
func (s *SQLiteStorage) SavePlan(ctx context.Context, plan *types.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.New().String()
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timeLayout)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO plans (id, data, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, plan.ID, string(data), now, now)
	if err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, currentPlanKey, plan.ID)
	if err != nil {
		return fmt.Errorf("failed to set current plan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit plan: %w", err)
	}
	return nil
}

// RecordEvent appends an event to the activity log
func (s *SQLiteStorage) RecordEvent(ctx context.Context, event *types.PlanEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO plan_events (id, plan_id, type, step_id, timestamp, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.ID, event.PlanID, string(event.Type), event.StepID,
		event.Timestamp.UTC().Format(timeLayout), string(data))
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// GetEvents returns the most recent events, newest first. limit <= 0 means no limit.
func (s *SQLiteStorage) GetEvents(ctx context.Context, limit int) ([]*types.PlanEvent, error) {
	query := `SELECT id, plan_id, type, step_id, timestamp, data FROM plan_events ORDER BY timestamp DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []*types.PlanEvent
	for rows.Next() {
		var (
			ev        types.PlanEvent
			eventType string
			timestamp string
			data      string
		)
		if err := rows.Scan(&ev.ID, &ev.PlanID, &eventType, &ev.StepID, &timestamp, &data); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.Type = types.PlanEventType(eventType)
		ev.Timestamp, err = time.Parse(timeLayout, timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event timestamp %q: %w", timestamp, err)
		}
		if data != "" && data != "null" {
			if err := json.Unmarshal([]byte(data), &ev.Data); err != nil {
				return nil, fmt.Errorf("failed to parse event data: %w", err)
			}
		}
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// Close closes the database
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
