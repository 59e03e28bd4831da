package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"loud":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)

	logger.Info("dropped")
	logger.Warn("kept", "cols", 80)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, float64(80), rec["cols"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("debug", "text", &buf).Debug("resize", "lines", 24)

	assert.Contains(t, buf.String(), "msg=resize")
	assert.Contains(t, buf.String(), "lines=24")
}

func TestOpenDebugFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	for range 2 {
		f, err := OpenDebugFile(path)
		require.NoError(t, err)
		NewLogger("info", "text", f).Info("hello")
		require.NoError(t, f.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "=== neo debug log started"))
	assert.Equal(t, 2, strings.Count(string(data), "msg=hello"))
}

func TestOpenDebugFile_BadPath(t *testing.T) {
	_, err := OpenDebugFile(filepath.Join(t.TempDir(), "missing", "debug.log"))
	assert.Error(t, err)
}
