package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, "mailactions.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))

	return path
}

func TestFindConfigExplicit(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "log_level: debug\n")

	got, err := FindConfig(path)
	require.NoError(t, err)
	require.Equal(t, path, got)

	_, err = FindConfig("/nonexistent/mailactions.yaml")
	require.Error(t, err)
}

func TestFindConfigCWD(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	got, err := FindConfig("")
	require.NoError(t, err)
	require.Empty(t, got)

	writeConfig(t, dir, "log_level: debug\n")
	got, err = FindConfig("")
	require.NoError(t, err)
	require.Equal(t, "mailactions.yaml", got)
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv("MAILACTIONS_TEST_DB", "/tmp/test.db")
	path := writeConfig(t, t.TempDir(), `
db_path: ${MAILACTIONS_TEST_DB}
log_level: debug
undo_toast_duration: 8s
undo_token_ttl: 6s
worker_pool_size: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "/tmp/test.db", cfg.DBPath)
	require.Equal(t, 8*time.Second, cfg.UndoToastDuration.Std())
	require.Equal(t, 6*time.Second, cfg.TokenTTL())
	require.Equal(t, 2, cfg.WorkerPoolSize)

	// Untouched fields keep their defaults.
	require.Equal(t, DefaultErrorToastDuration, cfg.ErrorToastDuration.Std())
	require.Equal(t, 4, cfg.MaxVisibleActions)

	level, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, btclog.LevelDebug, level)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "undo_toast_duration: soon\n")

	_, err := Load(path)
	require.ErrorContains(t, err, "line 1")
}

func TestValidate(t *testing.T) {
	require.NoError(t, Default().Validate())

	cfg := Default()
	cfg.DBPath = ""
	cfg.LogLevel = "loud"
	cfg.UndoToastDuration = 0
	cfg.WorkerPoolSize = -1

	err := cfg.Validate()
	require.ErrorContains(t, err, "db_path")
	require.ErrorContains(t, err, "unknown log level")
	require.ErrorContains(t, err, "undo_toast_duration")
	require.ErrorContains(t, err, "worker_pool_size")
	require.NotContains(t, err.Error(), "mailbox_size")
}

func TestTokenTTLFollowsUndoToast(t *testing.T) {
	cfg := Default()
	require.Equal(t, DefaultUndoToastDuration, cfg.TokenTTL())

	cfg.UndoToastDuration = Duration(2 * time.Second)
	require.Equal(t, 2*time.Second, cfg.TokenTTL())
	require.NoError(t, cfg.Validate())

	cfg.UndoTokenTTL = Duration(time.Second)
	require.Equal(t, time.Second, cfg.TokenTTL())
	require.NoError(t, cfg.Validate())

	cfg.UndoTokenTTL = Duration(30 * time.Second)
	require.ErrorContains(t, cfg.Validate(), "must not exceed")

	cfg.UndoTokenTTL = Duration(-time.Second)
	require.ErrorContains(t, cfg.Validate(), "must not be negative")
}

func TestLoadOrDefault(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	require.Empty(t, path)
	require.Equal(t, Default(), cfg)
}
