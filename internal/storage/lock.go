package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

const lockFileName = ".lock"

// A lock file that cannot be parsed may belong to a process that created it
// and has not written it yet. It is re-read lockReadAttempts times,
// lockReadDelay apart, and only taken over once it is older than
// unreadableLockAge.
const (
	lockReadAttempts  = 5
	lockReadDelay     = 20 * time.Millisecond
	unreadableLockAge = 5 * time.Second
)

// ErrLocked is returned when another live process holds the plan lock.
var ErrLocked = errors.New("plan is locked by another process")

// PlanLock is the lock file format. Commands that load, modify and save the
// plan hold it for the whole cycle so two edits never interleave.
type PlanLock struct {
	Holder    string    `json:"holder"`
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
}

// AcquireLock creates the lock file in the directory holding dbPath.
// A lock left behind by a process that no longer exists is taken over.
// Returns the lock file path for ReleaseLock.
func AcquireLock(dbPath, holder string) (string, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	lockPath := filepath.Join(dir, lockFileName)

	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to get hostname: %w", err)
	}
	data, err := json.MarshalIndent(PlanLock{
		Holder:    holder,
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now(),
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal lock: %w", err)
	}

	// Retried after a stale lock was removed or the holder released it
	for attempt := 0; attempt < 3; attempt++ {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			_, werr := f.Write(data)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(lockPath)
				return "", fmt.Errorf("failed to write lock: %w", errors.Join(werr, cerr))
			}
			return lockPath, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("failed to create lock: %w", err)
		}

		existing, readErr := readLockSettled(lockPath)
		switch {
		case os.IsNotExist(readErr):
			// Released between our create and read
			continue
		case readErr != nil:
			info, statErr := os.Stat(lockPath)
			if os.IsNotExist(statErr) {
				continue
			}
			if statErr != nil || time.Since(info.ModTime()) < unreadableLockAge {
				return "", fmt.Errorf("%w (lock file %s is being written)", ErrLocked, lockPath)
			}
		case isProcessAlive(existing.PID, existing.Hostname):
			return "", fmt.Errorf("%w (%s, PID %d on %s, since %s)", ErrLocked,
				existing.Holder, existing.PID, existing.Hostname, existing.StartedAt.Format(time.RFC3339))
		}
		// Dead holder, or unreadable long after creation: remove and retry
		if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to remove stale lock: %w", err)
		}
	}
	return "", ErrLocked
}

// ReleaseLock removes the lock file. Safe to call with an empty path.
func ReleaseLock(lockPath string) error {
	if lockPath == "" {
		return nil
	}
	if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock: %w", err)
	}
	return nil
}

func readLock(path string) (PlanLock, error) {
	var lock PlanLock
	data, err := os.ReadFile(path)
	if err != nil {
		return lock, err
	}
	err = json.Unmarshal(data, &lock)
	return lock, err
}

// readLockSettled reads the lock, re-reading a few times while it does not
// parse. A missing file is returned as is.
func readLockSettled(path string) (PlanLock, error) {
	var (
		lock PlanLock
		err  error
	)
	for i := 0; i < lockReadAttempts; i++ {
		if i > 0 {
			time.Sleep(lockReadDelay)
		}
		lock, err = readLock(path)
		if err == nil || os.IsNotExist(err) {
			return lock, err
		}
	}
	return lock, err
}

// isProcessAlive reports whether pid is running. Processes on other hosts
// cannot be checked and are assumed alive.
func isProcessAlive(pid int, hostname string) bool {
	currentHost, err := os.Hostname()
	if err != nil {
		return true
	}
	if !strings.EqualFold(hostname, currentHost) {
		return true
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 checks for existence without delivering anything
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM: exists, owned by someone else
	return errors.Is(err, syscall.EPERM)
}
