package log

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledByDefault(t *testing.T) {
	t.Setenv("RSVIM_LOG", "")
	logger := Init()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rsvim.log")
	t.Setenv("RSVIM_LOG", "debug")
	t.Setenv("RSVIM_LOG_FILE", path)

	logger := Init()
	logger.Debug("starting", "width", 80)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "starting")
	assert.Contains(t, string(data), "width=80")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    slog.Level
		enabled bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"", 0, false},
		{"bogus", 0, false},
	}
	for _, tt := range tests {
		level, enabled := parseLevel(tt.raw)
		assert.Equal(t, tt.enabled, enabled, tt.raw)
		if enabled {
			assert.Equal(t, tt.want, level, tt.raw)
		}
	}
}
