package sqlite

import (
	"context"
	"fmt"
)

// PruneEvents keeps the newest keep events and deletes the rest. keep <= 0
// keeps everything. Returns the number of events deleted.
func (s *SQLiteStorage) PruneEvents(ctx context.Context, keep int) (int, error) {
	if keep <= 0 {
		return 0, nil
	}
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM plan_events
		WHERE id NOT IN (
			SELECT id FROM plan_events
			ORDER BY timestamp DESC, id DESC
			LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune events: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}
