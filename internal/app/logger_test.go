package app

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("level gates output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("warn", "text", &buf)
		logger.Info("hidden.")
		assert.Empty(t, buf.String())
		logger.Warn("visible.")
		assert.Contains(t, buf.String(), "visible.")
	})

	t.Run("level names are case-insensitive", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("DEBUG", "text", &buf)
		logger.Debug("visible.")
		assert.Contains(t, buf.String(), "visible.")
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("chatty", "text", &buf)
		logger.Debug("hidden.")
		assert.Empty(t, buf.String())
		logger.Info("visible.")
		assert.Contains(t, buf.String(), "visible.")
	})

	t.Run("json format emits one json object per record", func(t *testing.T) {
		var buf bytes.Buffer
		logger := newLogger("info", "json", &buf)
		logger.Info("hello.", "key", "value")

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello.", record["msg"])
		assert.Equal(t, "value", record["key"])
	})
}
