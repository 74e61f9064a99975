package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "default", cfg.Profile)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Validation.StrictMode)
	require.NoError(t, cfg.Validation.Validate())
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Profile)
}

func TestLoadProfileThenExplicitOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	content := `
profile: strict
calendar: weekday
logging:
  level: debug
  format: json
validation:
  outlier_sigma: 3.0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// The strict profile applies first, then the explicit section wins
	// field by field.
	assert.True(t, cfg.Validation.StrictMode, "from the strict profile")
	assert.Equal(t, 3.0, cfg.Validation.OutlierSigma, "explicit value overrides the profile")
	assert.Equal(t, 0.10, cfg.Validation.MaxPriceJumpRatio, "untouched strict-profile value survives")
	assert.Equal(t, "weekday", cfg.Calendar)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadUnknownProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: paranoid\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown validation profile")
}

func TestLoadInvalidValidationValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("validation:\n  outlier_sigma: -1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid validation config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OHLCV_LOG_LEVEL", "debug")
	t.Setenv("OHLCV_LOG_FORMAT", "json")
	t.Setenv("OHLCV_CALENDAR", "24/7")
	t.Setenv("OHLCV_STRICT", "true")
	t.Setenv("OHLCV_TIMEFRAME", "4h")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "24/7", cfg.Calendar)
	assert.True(t, cfg.Validation.StrictMode)
	assert.Equal(t, "4h", cfg.Validation.Timeframe)
}

func TestEnvOverrideInvalidStrictIgnored(t *testing.T) {
	t.Setenv("OHLCV_STRICT", "definitely")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Validation.StrictMode)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
