package logging

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
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
		{"", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestNewWithWriterRenamesKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "INFO")

	logger.Debug("hidden")
	logger.Info("login succeeded", slog.String("user_id", "1"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "login succeeded", rec["message"])
	assert.Equal(t, "1", rec["user_id"])
	assert.Contains(t, rec, "timestamp")
	assert.NotContains(t, rec, "msg")
}

func TestOrDiscard(t *testing.T) {
	assert.NotNil(t, OrDiscard(nil))

	l := slog.Default()
	assert.Same(t, l, OrDiscard(l))
}
