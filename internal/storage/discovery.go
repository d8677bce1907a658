package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DataDirName is the per-case directory holding the database, plan files,
// and lock.
const DataDirName = ".pathway"

// DefaultDBName is the SQLite file inside the data directory.
const DefaultDBName = "pathway.db"

// ErrNoDataDir is returned when no data directory exists at or above the
// start directory.
var ErrNoDataDir = errors.New("no " + DataDirName + " directory found")

// DiscoverDatabase returns the database path to use.
//
// PATHWAY_DB_PATH wins when set. Otherwise the working directory and its
// parents are searched for a .pathway directory, so commands work from
// anywhere inside a case folder.
func DiscoverDatabase() (string, error) {
	if dbPath := os.Getenv("PATHWAY_DB_PATH"); dbPath != "" {
		return dbPath, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return discoverDatabaseFromDir(dir)
}

// discoverDatabaseFromDir walks up from startDir to the filesystem root.
func discoverDatabaseFromDir(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	for {
		dataDir := filepath.Join(dir, DataDirName)
		if info, err := os.Stat(dataDir); err == nil && info.IsDir() {
			return filepath.Join(dataDir, DefaultDBName), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("%w in %s or parent directories\n"+
		"  Run 'pathway intake' to start a plan here\n"+
		"  Or use --db to specify the database path explicitly",
		ErrNoDataDir, startDir)
}
