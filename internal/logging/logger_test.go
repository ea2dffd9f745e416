package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "gofind.log")

	l, err := NewLogger(LogConfig{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)

	l.Named("gateway").Info("fetch.done",
		String("dataset", "countries"),
		Int("count", 250),
		Duration("elapsed", 20*time.Millisecond),
		Err(errors.New("boom")),
	)
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, `"msg":"fetch.done"`)
	assert.Contains(t, line, `"dataset":"countries"`)
	assert.Contains(t, line, `"count":250`)
	assert.Contains(t, line, `"error":"boom"`)
	assert.Contains(t, line, `"logger":"gateway"`)
}

func TestNewLogger_LevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gofind.log")

	l, err := NewLogger(LogConfig{Level: "warn", Output: path})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), "shown")
}

func TestNewLogger_ConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gofind.log")

	l, err := NewLogger(LogConfig{Format: "console", Output: path})
	require.NoError(t, err)
	l.With(Bool("full_width", true)).Info("layout.toggled")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "layout.toggled")
	assert.False(t, strings.HasPrefix(string(data), "{"))
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Info("x", Any("k", []int{1}))
		l.With(String("a", "b")).Named("n").Error("y")
	})
}
