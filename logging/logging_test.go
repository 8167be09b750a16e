package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "osa-builder.log")
	log, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)

	log.Debug("segment copied", zap.String("segment", "code-1"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := strings.TrimSpace(string(data))
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "segment copied", entry["msg"])
	assert.Equal(t, "code-1", entry["segment"])
}

func TestNew_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.log")
	log, err := New(Options{Level: "warn", File: path})
	require.NoError(t, err)
	log.Info("dropped")
	log.Warn("kept")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "dropped")
	assert.Contains(t, string(data), "kept")
}

func TestNew_BadLevelDefaultsToInfo(t *testing.T) {
	log, err := New(Options{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNew_Verbose(t *testing.T) {
	log, err := New(Options{Level: "error", Verbose: true, File: filepath.Join(t.TempDir(), "x.log")})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}
