package iologger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gitmo/pkg/config"
	"github.com/gnames/gitmo/pkg/errcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		res   slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.res, parseLevel(tt.input), tt.input)
	}
}

func TestNewHandler_JSON(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.LogConfig{Format: "json", Level: "info"}
	log := slog.New(newHandler(&buf, cfg))

	log.Debug("hidden")
	log.Info("imported", "rows", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "imported", rec["msg"])
	assert.EqualValues(t, 3, rec["rows"])
}

func TestNewHandler_Text(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.LogConfig{Format: "text", Level: "debug"}
	log := slog.New(newHandler(&buf, cfg))

	log.Debug("visible", "isn", "000001")
	assert.Contains(t, buf.String(), "msg=visible")
	assert.Contains(t, buf.String(), "isn=000001")
}

func TestInit_File(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	dir := t.TempDir()
	cfg := config.LogConfig{Format: "json", Level: "info", Destination: "file"}
	err := Init(dir, cfg, false)
	require.NoError(t, err)

	slog.Info("hello")
	content, err := os.ReadFile(filepath.Join(dir, LogFileName))
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello")
}

func TestInit_MissingDir(t *testing.T) {
	cfg := config.LogConfig{Format: "json", Level: "info", Destination: "file"}
	err := Init(filepath.Join(t.TempDir(), "absent"), cfg, false)
	require.Error(t, err)
	assert.True(t, errcode.Is(err, errcode.CreateLogFileError))
}

// TestInit_Reconfigure covers the bootstrap sequence: a fresh file
// first, then appending with user settings.
func TestInit_Reconfigure(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	dir := t.TempDir()
	logPath := filepath.Join(dir, LogFileName)
	require.NoError(t, os.WriteFile(logPath, []byte("stale\n"), 0644))

	cfg := config.LogConfig{Format: "json", Level: "info", Destination: "file"}
	require.NoError(t, Init(dir, cfg, false))
	first := logFile
	slog.Info("defaults")

	cfg.Format = "text"
	require.NoError(t, Init(dir, cfg, true))
	t.Cleanup(func() { logFile.Close() })
	slog.Info("user settings")

	_, err := first.WriteString("late")
	assert.ErrorIs(t, err, os.ErrClosed)

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "stale")
	assert.Contains(t, string(content), "defaults")
	assert.Contains(t, string(content), "user settings")
}

func TestInit_StdoutClosesFile(t *testing.T) {
	orig := slog.Default()
	t.Cleanup(func() { slog.SetDefault(orig) })

	dir := t.TempDir()
	cfg := config.LogConfig{Format: "json", Level: "info", Destination: "file"}
	require.NoError(t, Init(dir, cfg, false))
	first := logFile

	cfg.Destination = "stdout"
	require.NoError(t, Init(dir, cfg, true))
	assert.Nil(t, logFile)

	_, err := first.WriteString("late")
	assert.ErrorIs(t, err, os.ErrClosed)
}
