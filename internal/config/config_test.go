package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8181", cfg.Listen)
	assert.Equal(t, "classon", cfg.Database.Name)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "monday", cfg.Settings.WeekStart)
	assert.Equal(t, "@every 1m", cfg.Reminder.Cron)
	assert.Len(t, cfg.Timetable.DefaultPeriods, 6)
	assert.Equal(t, 480, cfg.Timetable.DefaultPeriods[0].StartMinute)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := []byte(`
listen: ":9000"
db:
  host: db.internal
  port: 6543
settings:
  weekstart: Sunday
  vacation: true
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CLASSON_DB_USER", "from_env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Listen)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "from_env", cfg.Database.User)
	assert.Equal(t, "sunday", cfg.Settings.WeekStart)
	assert.True(t, cfg.Settings.Vacation)
}

func TestLoad_UnknownWeekStartFallsBackToMonday(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settings:\n  weekstart: friday\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "monday", cfg.Settings.WeekStart)
}
