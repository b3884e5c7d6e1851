package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"KAIRU_CONFIG_PATH", "KAIRU_DB_PATH", "KAIRU_LOG_LEVEL", "KAIRU_LOG_PATH",
		"KAIRU_ROSTER_PATH", "KAIRU_TOKEN", "KAIRU_TIMER_MINUTES",
	} {
		t.Setenv(k, "")
	}
	// Load looks for .env in the working directory.
	t.Chdir(t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 25, cfg.Timer.DefaultMinutes)
	require.True(t, cfg.Timer.Sound)
	require.Equal(t, 5, cfg.Sync.MaxAttempts)
	require.Equal(t, "sunday", cfg.Leaderboard.WeekStart)
	require.True(t, strings.HasSuffix(cfg.DB.Path, "kairu.db"))
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "kairu.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  path: /tmp/from-file.db
log:
  level: debug
timer:
  default_minutes: 50
  sound: false
sync:
  max_attempts: 2
  base_delay: 250ms
leaderboard:
  week_start: monday
`), 0o644))
	t.Setenv("KAIRU_CONFIG_PATH", path)
	t.Setenv("KAIRU_DB_PATH", "/tmp/from-env.db")
	t.Setenv("KAIRU_TOKEN", "tok")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/from-env.db", cfg.DB.Path)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 50, cfg.Timer.DefaultMinutes)
	require.False(t, cfg.Timer.Sound)
	require.Equal(t, 2, cfg.Sync.MaxAttempts)
	require.Equal(t, 250*time.Millisecond, cfg.Sync.BaseDelay)
	require.Equal(t, "monday", cfg.Leaderboard.WeekStart)
	require.Equal(t, "tok", cfg.Auth.Token)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	require.NoError(t, os.WriteFile(".env", []byte("KAIRU_ROSTER_PATH=/tmp/roster.yaml\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("KAIRU_ROSTER_PATH") })
	os.Unsetenv("KAIRU_ROSTER_PATH")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/tmp/roster.yaml", cfg.Leaderboard.Roster)
}

func TestLoadInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("KAIRU_TIMER_MINUTES", "abc")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("KAIRU_TIMER_MINUTES", "0")
	_, err = Load()
	require.Error(t, err)

	t.Setenv("KAIRU_TIMER_MINUTES", "")
	t.Setenv("KAIRU_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = Load()
	require.Error(t, err)
}

func TestValidateWeekStart(t *testing.T) {
	cfg := Default()
	cfg.Leaderboard.WeekStart = "friday"
	require.Error(t, cfg.Validate())
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, ParseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, ParseLogLevel("warn"))
	require.Equal(t, slog.LevelError, ParseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, ParseLogLevel("verbose"))
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kairu.log")
	logger, closer, err := NewLogger(LogConfig{Level: "debug", Path: path})
	require.NoError(t, err)
	logger.Debug("hello", "k", "v")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "msg=hello")
	require.Contains(t, string(data), "k=v")
}

func TestNewLoggerDiscard(t *testing.T) {
	logger, closer, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	logger.Info("dropped")
	require.NoError(t, closer.Close())
}

func TestLogFileTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.log")
	w, err := newLogFileWriter(path)
	require.NoError(t, err)
	w.max, w.keep = 64, 16
	defer w.Close()

	_, err = w.Write([]byte(strings.Repeat("a", 60)))
	require.NoError(t, err)
	_, err = w.Write([]byte(strings.Repeat("b", 10)))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("a", 6)+strings.Repeat("b", 10), string(data))
}
