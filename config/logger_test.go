package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), tt.in)
	}
}

func TestNewLogger_ProductionJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn", "stats-service")

	logger.Info("dropped")
	logger.Warn("kept", "uri", "/events/1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "kept", rec["msg"])
	assert.Equal(t, "stats-service", rec["service"])
	assert.Equal(t, "/events/1", rec["uri"])
}

func TestNewLogger_DevelopmentText(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "development", "", "")

	logger.Info("hello")

	assert.Contains(t, buf.String(), "msg=hello")
	assert.NotContains(t, buf.String(), "service=")
}
