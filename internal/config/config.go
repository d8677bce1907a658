package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/steveyegge/pathway/internal/alerts"
	"github.com/steveyegge/pathway/internal/types"
)

// Store backends
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

// Config holds runtime configuration for the pathway CLI
type Config struct {
	// DBPath is where the plan is persisted.
	// Default: ".pathway/pathway.db"
	DBPath string

	// Store selects the persistence backend: "sqlite" or "file".
	// Default: "sqlite"
	Store string

	// RulesFile is an optional YAML overlay for the rule table.
	RulesFile string

	// LogDir enables a rotating log file in this directory when set.
	LogDir string

	// LogJSON switches log output to JSON.
	LogJSON bool

	// Debug enables debug-level logging.
	Debug bool

	// UpcomingDays is the default window for "upcoming" steps.
	// Default: 30, Range: 1-365
	UpcomingDays int

	// AlertWindowDays is how far ahead deadline and expiration alerts start.
	// Default: 180, Range: 30-730
	AlertWindowDays int

	// EventLimit is how many activity log entries to keep; older ones are
	// pruned after each save. 0 keeps everything.
	// Default: 1000, Range: 0 or 100-100000
	EventLimit int

	// Today overrides the clock's current date when set (YYYY-MM-DD).
	Today types.Date
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		DBPath:          ".pathway/pathway.db",
		Store:           StoreSQLite,
		UpcomingDays:    30,
		AlertWindowDays: 180,
		EventLimit:      1000,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Store != StoreSQLite && c.Store != StoreFile {
		return fmt.Errorf("store must be 'sqlite' or 'file' (got %q)", c.Store)
	}
	if c.UpcomingDays < 1 || c.UpcomingDays > 365 {
		return fmt.Errorf("upcoming_days must be between 1 and 365 (got %d)", c.UpcomingDays)
	}
	if c.AlertWindowDays < 30 || c.AlertWindowDays > 730 {
		return fmt.Errorf("alert_window_days must be between 30 and 730 (got %d)", c.AlertWindowDays)
	}
	if c.EventLimit < 0 {
		return fmt.Errorf("event_limit cannot be negative (got %d)", c.EventLimit)
	}
	if c.EventLimit > 0 && c.EventLimit < 100 {
		return fmt.Errorf("event_limit must be 0 (unlimited) or >= 100 (got %d)", c.EventLimit)
	}
	if c.EventLimit > 100000 {
		return fmt.Errorf("event_limit too large (got %d, max 100000)", c.EventLimit)
	}
	return nil
}

// AlertConfig returns alert thresholds with the configured window.
func (c Config) AlertConfig() alerts.Config {
	cfg := alerts.DefaultConfig()
	cfg.WindowDays = c.AlertWindowDays
	return cfg
}

// TodayOr returns the configured date override, or the calendar date of now
// in its local time zone.
func (c Config) TodayOr(now time.Time) types.Date {
	if !c.Today.IsZero() {
		return c.Today
	}
	return types.DateOf(now)
}

// FromEnv creates a Config from environment variables, falling back to defaults
//
// Environment variables:
//   - PATHWAY_DB_PATH: Plan database path (default: .pathway/pathway.db)
//   - PATHWAY_STORE: Persistence backend, sqlite or file (default: sqlite)
//   - PATHWAY_RULES_FILE: Rule table overlay YAML (default: none)
//   - PATHWAY_LOG_DIR: Directory for rotating log files (default: none)
//   - PATHWAY_LOG_JSON: JSON log output (default: false)
//   - PATHWAY_DEBUG: Debug logging (default: false)
//   - PATHWAY_UPCOMING_DAYS: Upcoming step window in days (default: 30)
//   - PATHWAY_ALERT_WINDOW_DAYS: Alert lookahead in days (default: 180)
//   - PATHWAY_EVENT_LIMIT: Activity log entries to keep, 0 for all (default: 1000)
//   - PATHWAY_TODAY: Override today's date, YYYY-MM-DD (default: system clock)
//
// Returns an error if any environment variable has an invalid value.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if err := parseEnvString("PATHWAY_DB_PATH", &cfg.DBPath); err != nil {
		return cfg, err
	}
	if err := parseEnvString("PATHWAY_STORE", &cfg.Store); err != nil {
		return cfg, err
	}
	if err := parseEnvString("PATHWAY_RULES_FILE", &cfg.RulesFile); err != nil {
		return cfg, err
	}
	if err := parseEnvString("PATHWAY_LOG_DIR", &cfg.LogDir); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("PATHWAY_LOG_JSON", &cfg.LogJSON); err != nil {
		return cfg, err
	}
	if err := parseEnvBool("PATHWAY_DEBUG", &cfg.Debug); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("PATHWAY_UPCOMING_DAYS", &cfg.UpcomingDays); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("PATHWAY_ALERT_WINDOW_DAYS", &cfg.AlertWindowDays); err != nil {
		return cfg, err
	}
	if err := parseEnvInt("PATHWAY_EVENT_LIMIT", &cfg.EventLimit); err != nil {
		return cfg, err
	}
	if err := parseEnvDate("PATHWAY_TODAY", &cfg.Today); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// parseEnvInt parses an integer from an environment variable
func parseEnvInt(key string, dest *int) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvBool parses a bool from an environment variable
func parseEnvBool(key string, dest *bool) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}

// parseEnvString parses a string from an environment variable
func parseEnvString(key string, dest *string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	*dest = value
	return nil
}

// parseEnvDate parses a YYYY-MM-DD date from an environment variable
func parseEnvDate(key string, dest *types.Date) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parsed, err := types.ParseDate(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
