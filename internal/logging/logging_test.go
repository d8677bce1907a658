package logging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultLevelIsWarn(t *testing.T) {
	logger, closer, err := New(Config{Quiet: true})
	require.NoError(t, err)
	defer closer.Close()

	ctx := context.Background()
	assert.False(t, logger.Enabled(ctx, slog.LevelInfo))
	assert.True(t, logger.Enabled(ctx, slog.LevelWarn))
}

func TestNewDebug(t *testing.T) {
	logger, closer, err := New(Config{Quiet: true, Debug: true})
	require.NoError(t, err)
	defer closer.Close()

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestNewWritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, closer, err := New(Config{Dir: dir, Quiet: true, JSON: true})
	require.NoError(t, err)

	assert.True(t, logger.Enabled(context.Background(), slog.LevelInfo), "the log file records info and above")
	logger.Info("plan derived", "steps", 7)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "pathway.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"plan derived"`)
	assert.Contains(t, string(data), `"steps":7`)
}

func TestInitSetsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	closer, err := Init(Config{Quiet: true, Debug: true})
	require.NoError(t, err)
	defer closer.Close()

	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}
