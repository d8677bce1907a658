package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAndReleaseLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), ".pathway", "pathway.db")

	lockPath, err := AcquireLock(dbPath, "test")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(dbPath), ".lock"), lockPath)

	lock, err := readLock(lockPath)
	require.NoError(t, err)
	assert.Equal(t, "test", lock.Holder)
	assert.Equal(t, os.Getpid(), lock.PID)

	// Held by a live process (this one)
	_, err = AcquireLock(dbPath, "second")
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, ReleaseLock(lockPath))
	_, err = os.Stat(lockPath)
	assert.True(t, os.IsNotExist(err))

	again, err := AcquireLock(dbPath, "third")
	require.NoError(t, err)
	assert.NoError(t, ReleaseLock(again))
}

func TestAcquireLockTakesOverStaleLock(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "pathway.db")
	hostname, err := os.Hostname()
	require.NoError(t, err)

	// A PID far above any real pid_max
	stale, err := json.Marshal(PlanLock{Holder: "crashed", PID: 1 << 30, Hostname: hostname, StartedAt: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lock"), stale, 0644))

	lockPath, err := AcquireLock(dbPath, "fresh")
	require.NoError(t, err)
	defer ReleaseLock(lockPath)

	lock, err := readLock(lockPath)
	require.NoError(t, err)
	assert.Equal(t, "fresh", lock.Holder)
}

func TestAcquireLockTakesOverOldCorruptLock(t *testing.T) {
	dir := t.TempDir()
	lockFile := filepath.Join(dir, ".lock")
	require.NoError(t, os.WriteFile(lockFile, []byte("not json"), 0644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(lockFile, old, old))

	lockPath, err := AcquireLock(filepath.Join(dir, "pathway.db"), "fresh")
	require.NoError(t, err)
	assert.NoError(t, ReleaseLock(lockPath))
}

func TestAcquireLockRespectsLockBeingWritten(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"created but not written", nil},
		{"partially written", []byte(`{"holder":"pathway due","pi`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			lockFile := filepath.Join(dir, ".lock")
			require.NoError(t, os.WriteFile(lockFile, tt.content, 0644))

			_, err := AcquireLock(filepath.Join(dir, "pathway.db"), "second")
			assert.ErrorIs(t, err, ErrLocked)

			data, err := os.ReadFile(lockFile)
			require.NoError(t, err, "the other process's lock must not be removed")
			assert.Equal(t, string(tt.content), string(data))
		})
	}
}

func TestLockHeldOnOtherHostIsRespected(t *testing.T) {
	dir := t.TempDir()
	remote, err := json.Marshal(PlanLock{Holder: "remote", PID: 1 << 30, Hostname: "some-other-host.invalid", StartedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lock"), remote, 0644))

	_, err = AcquireLock(filepath.Join(dir, "pathway.db"), "local")
	assert.ErrorIs(t, err, ErrLocked)
}

func TestReleaseLockEmptyPath(t *testing.T) {
	assert.NoError(t, ReleaseLock(""))
	assert.NoError(t, ReleaseLock(filepath.Join(t.TempDir(), "missing")))
}
