package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"arbsweep/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{"json info", "info", "json", zapcore.InfoLevel, false},
		{"console debug", "debug", "console", zapcore.DebugLevel, false},
		{"default format", "warn", "", zapcore.WarnLevel, false},
		{"invalid level", "loud", "json", 0, true},
		{"invalid format", "info", "xml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewWithWriter(config.LogConfig{Level: tt.level, Format: tt.format}, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantLevel, l.Level())
			assert.NoError(t, l.Close())
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	l, err := NewWithWriter(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	l.Info("hidden")
	l.Warn("shown", zap.String("file", "lib/a.dart"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "lib/a.dart", entry["file"])

	require.NoError(t, l.SetLevel("debug"))
	l.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "arbsweep.log")

	l, err := NewWithWriter(config.LogConfig{Level: "info", Format: "console", File: path, MaxSizeMB: 1}, &bytes.Buffer{})
	require.NoError(t, err)

	l.Info("to file", zap.Int("files", 3))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
	assert.Contains(t, string(data), `"files":3`)
}
