package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/steveyegge/pathway/internal/storage/jsonfile"
	"github.com/steveyegge/pathway/internal/storage/sqlite"
	"github.com/steveyegge/pathway/internal/types"
)

// Storage persists the single plan of a case and its activity log.
//
// The engine never calls this; the CLI loads before and saves after each
// engine operation, and only saves when the operation succeeded.
type Storage interface {
	// LoadPlan returns the current plan, or (nil, nil) before the first save
	LoadPlan(ctx context.Context) (*types.Plan, error)
	// SavePlan replaces the current plan, assigning an id if it has none
	SavePlan(ctx context.Context, plan *types.Plan) error

	RecordEvent(ctx context.Context, event *types.PlanEvent) error
	GetEvents(ctx context.Context, limit int) ([]*types.PlanEvent, error)
	// PruneEvents keeps only the newest keep events (keep <= 0 keeps all)
	PruneEvents(ctx context.Context, keep int) (int, error)

	Close() error
}

// Backend names
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Config holds storage configuration
type Config struct {
	// Backend is "sqlite" (default) or "file"
	Backend string

	// Path is the SQLite database file. The file backend writes next to it,
	// in the same directory.
	// Default: ".pathway/pathway.db"
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendSQLite,
		Path:    filepath.Join(DataDirName, DefaultDBName),
	}
}

// NewStorage opens the configured backend
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	path := cfg.Path
	if path == "" {
		path = DefaultConfig().Path
	}

	switch cfg.Backend {
	case BackendSQLite, "":
		return sqlite.New(path)
	case BackendFile:
		return jsonfile.New(filepath.Dir(path))
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
