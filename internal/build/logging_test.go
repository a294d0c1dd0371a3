package build

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
	"github.com/stretchr/testify/require"
)

func TestHandlerSetFansOut(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	set := NewHandlerSet(
		btclogv2.NewDefaultHandler(&a), btclogv2.NewDefaultHandler(&b),
	)

	logger := btclogv2.NewSLogger(set.SubSystem("TEST"))
	logger.Infof("hello %s", "there")
	logger.Debugf("hidden")

	for _, buf := range []*bytes.Buffer{&a, &b} {
		require.Contains(t, buf.String(), "hello there")
		require.Contains(t, buf.String(), "TEST")
		require.NotContains(t, buf.String(), "hidden")
	}

	set.SetLevel(btclog.LevelDebug)
	require.Equal(t, btclog.LevelDebug, set.Level())
}

func TestLogManagerConsoleAndFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var console bytes.Buffer

	mgr, err := NewLogManager(LogConfig{
		Console: &console,
		File: &LogRotatorConfig{
			LogDir:         dir,
			MaxLogFiles:    DefaultMaxLogFiles,
			MaxLogFileSize: DefaultMaxLogFileSize,
		},
		Level: btclog.LevelInfo,
	})
	require.NoError(t, err)

	var got btclogv2.Logger
	mgr.Register(map[string]func(btclogv2.Logger){
		"UNIT": func(l btclogv2.Logger) { got = l },
	})
	require.NotNil(t, got)
	require.Equal(t, got, mgr.Logger("UNIT"))
	require.Equal(t, []string{"UNIT"}, mgr.Subsystems())

	got.Debugf("quiet")
	mgr.SetLevel(btclog.LevelDebug)
	got.Debugf("loud")

	require.NoError(t, mgr.Close())

	data, err := os.ReadFile(filepath.Join(dir, DefaultLogFilename))
	require.NoError(t, err)
	require.Contains(t, string(data), "loud")
	require.NotContains(t, string(data), "quiet")
	require.Contains(t, console.String(), "loud")
}

func TestLogManagerConsoleOnly(t *testing.T) {
	t.Parallel()

	mgr, err := NewLogManager(LogConfig{Level: btclog.LevelInfo})
	require.NoError(t, err)

	mgr.Logger("NONE").Infof("dropped")
	require.NoError(t, mgr.Close())
}
