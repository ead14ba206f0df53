package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log, err := New("debug")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New("nonsense")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))

	t.Setenv("LOG_LEVEL", "warn")
	log, err = New("")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestBuild_WritesStructuredJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	log, err := build("info", "json", []string{path})
	require.NoError(t, err)

	log.Named("janitor").Info("pruned", zap.Int("count", 3))
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "INFO", entry["severity"])
	assert.Equal(t, "pruned", entry["message"])
	assert.Equal(t, "janitor", entry["logger"])
	assert.EqualValues(t, 3, entry["count"])
	assert.Contains(t, entry, "timestamp")
}

func TestPrintfAdapter_NilLogger(t *testing.T) {
	a := NewPrintfAdapter(nil)
	assert.NotPanics(t, func() { a.Printf("applied %d migrations\n", 2) })
}
