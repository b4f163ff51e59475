// File: internal/observability/logger_test.go
package observability

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

	"github.com/xkilldash9x/wardsim/internal/config"
)

// syncBuffer adapts bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

func TestInitialize(t *testing.T) {
	t.Run("should emit console output at the configured level", func(t *testing.T) {
		ResetForTest()
		buf := &syncBuffer{}

		Initialize(config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			ServiceName: "wardsim-test",
		}, buf)

		logger := GetLogger()
		logger.Debug("network channel primed")
		Sync()

		output := buf.String()
		assert.Contains(t, output, "DEBUG")
		assert.Contains(t, output, "network channel primed")
	})

	t.Run("should emit structured json when configured", func(t *testing.T) {
		ResetForTest()
		buf := &syncBuffer{}

		Initialize(config.LoggerConfig{
			Level:       "info",
			Format:      "json",
			ServiceName: "wardsim-test",
		}, buf)

		GetLogger().Warn("rogue burst started", zap.String("rogue_id", "rogue_1"))
		Sync()

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log output should be valid JSON")
		assert.Equal(t, "warn", entry["level"])
		assert.Equal(t, "wardsim-test", entry["logger"])
		assert.Equal(t, "rogue burst started", entry["msg"])
		assert.Equal(t, "rogue_1", entry["rogue_id"])
	})

	t.Run("should filter entries below the configured level", func(t *testing.T) {
		ResetForTest()
		buf := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "warn", Format: "json"}, buf)

		GetLogger().Info("should be suppressed")
		Sync()
		assert.Empty(t, buf.String())
	})

	t.Run("should write to a log file if configured", func(t *testing.T) {
		ResetForTest()
		logFile := filepath.Join(t.TempDir(), "wardsim.log")

		Initialize(config.LoggerConfig{
			Level:   "debug",
			Format:  "console",
			LogFile: logFile,
			MaxSize: 1,
		}, &syncBuffer{})

		GetLogger().Error("this should reach the file sink")
		Sync()

		content, err := os.ReadFile(logFile)
		require.NoError(t, err)
		assert.Contains(t, string(content), "this should reach the file sink")
	})

	t.Run("should only initialize once", func(t *testing.T) {
		ResetForTest()
		buf := &syncBuffer{}

		Initialize(config.LoggerConfig{Level: "info", ServiceName: "first"}, buf)
		first := GetLogger()

		Initialize(config.LoggerConfig{Level: "debug", ServiceName: "second"}, buf)
		second := GetLogger()

		assert.Equal(t, first, second)
		second.Info("probe")
		Sync()

		assert.True(t, strings.Contains(buf.String(), "first"))
		assert.False(t, strings.Contains(buf.String(), "second"))
	})
}

func TestGetLogger(t *testing.T) {
	t.Run("should return a fallback logger before initialization", func(t *testing.T) {
		ResetForTest()
		logger := GetLogger()
		require.NotNil(t, logger)
	})

	t.Run("should return the global logger after initialization", func(t *testing.T) {
		ResetForTest()
		Initialize(config.LoggerConfig{Level: "info"}, zapcore.AddSync(&syncBuffer{}))

		assert.Equal(t, globalLogger.Load(), GetLogger())
	})
}
