package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"", zapcore.InfoLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.raw), tt.raw)
	}
}

func TestFieldsExtractsError(t *testing.T) {
	out := fields("vectorstore", map[string]interface{}{
		"error": errors.New("boom"),
		"id":    "doc-1",
	})
	require.Len(t, out, 3)
	assert.Equal(t, "module", out[0].Key)
	assert.Equal(t, "error", out[1].Key)
	assert.Equal(t, "details", out[2].Key)
}

func TestFieldsWithoutDetails(t *testing.T) {
	out := fields("llm", nil)
	require.Len(t, out, 1)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	l := New(Options{FilePath: path, Level: "info", JSON: true})
	l.Info("test", "hello", map[string]interface{}{"k": "v"})
	_ = l.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\"message\":\"hello\"")
	assert.Contains(t, string(raw), "\"module\":\"test\"")
}
