package logger

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "text", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
}

func TestNewStderrLogger(t *testing.T) {
	log, closer, err := New(DefaultConfig())
	require.NoError(t, err)
	defer closer.Close()
	assert.NotNil(t, log)
	assert.True(t, log.Enabled(nil, slog.LevelInfo))
	assert.False(t, log.Enabled(nil, slog.LevelDebug))
}

func TestNewFileLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "validator.log")
	cfg := DefaultConfig()
	cfg.Output = "file"
	cfg.FilePath = path
	cfg.Format = "json"
	cfg.Level = "debug"

	log, closer, err := New(cfg)
	require.NoError(t, err)

	log.Info("validation completed", "asset", "AAPL", "passed", true)
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "INFO", entry["level"], "levels are uppercased")
	assert.Equal(t, "validation completed", entry["msg"])
	assert.Equal(t, "AAPL", entry["asset"])
	assert.Equal(t, true, entry["passed"])
	assert.NotEmpty(t, entry["time"])
}

func TestNewFileLoggerRequiresPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "file"
	_, _, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file_path is required")
}

func TestNewUnknownOutput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "syslog"
	_, _, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log output")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
