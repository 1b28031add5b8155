package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polkiloo/healthmart/internal/config"
)

func TestNewUsesConfiguredLevel(t *testing.T) {
	l := New(&config.Config{LogLevel: slog.LevelWarn})
	require.NotNil(t, l)

	assert.True(t, l.Enabled(context.Background(), slog.LevelWarn))
	assert.False(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.IsType(t, &slog.JSONHandler{}, l.Handler())
}

func TestLoggerTagsService(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, slog.LevelInfo)

	l.Info("order placed", slog.Int64("order_id", 7))
	l.Debug("hidden")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "healthmart", entry["service"])
	assert.Equal(t, "order placed", entry["msg"])
	assert.EqualValues(t, 7, entry["order_id"])
}
