package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VERIFY_POLICY", "")
	t.Setenv("FETCH_ATTEMPTS", "")
	t.Setenv("WATCH_FORMATS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "operator", cfg.VerifyPolicy)
	assert.Equal(t, 1, cfg.FetchAttempts)
	assert.Equal(t, 2.0, cfg.FOSValveMin)
	assert.Equal(t, 1.0, cfg.FOSActuatorMin)
	assert.Equal(t, []string{"xlsx"}, cfg.WatchFormats)
	assert.NotEmpty(t, cfg.MastURL)
	assert.NotEmpty(t, cfg.DashURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VERIFY_POLICY", " Valve_Torque ")
	t.Setenv("FETCH_ATTEMPTS", "3")
	t.Setenv("FOS_VALVE_MIN", "1.5")
	t.Setenv("WATCH_FORMATS", "xlsx, PDF,,csv")
	t.Setenv("HISTORY_ENABLED", "off")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "valve_torque", cfg.VerifyPolicy)
	assert.Equal(t, 3, cfg.FetchAttempts)
	assert.Equal(t, 1.5, cfg.FOSValveMin)
	assert.Equal(t, []string{"xlsx", "pdf", "csv"}, cfg.WatchFormats)
	assert.False(t, cfg.HistoryEnabled)
}

func TestLoadRejectsUnknownPolicy(t *testing.T) {
	t.Setenv("VERIFY_POLICY", "loose")
	_, err := Load()
	require.Error(t, err)
}

func TestRequire(t *testing.T) {
	var cfg Config
	require.Error(t, cfg.Require("GOOGLE_CLIENT_ID", "  "))
	require.NoError(t, cfg.Require("GOOGLE_CLIENT_ID", "id"))
}
