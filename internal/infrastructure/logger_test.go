package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocksentiment/internal/config"
)

func decodeLine(t *testing.T, line []byte) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(line, &entry), string(line))
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "nested", "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.Same(t, logger, GetLogger())

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	entry := decodeLine(t, bytes.TrimSpace(content))
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
}

func TestInitializeLogger_OnlyOnce(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	cfg := config.LoggingConfig{Level: "info", Output: "console"}
	first, err := InitializeLogger(cfg)
	require.NoError(t, err)
	second, err := InitializeLogger(config.LoggingConfig{Level: "debug", Output: "console"})
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestTraceIDInjection(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "info"}, &buf)

	ctx := WithTraceID(context.Background(), "trace-123")
	logger.InfoContext(ctx, "with trace")
	logger.Info("without trace")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Equal(t, "trace-123", decodeLine(t, lines[0])["trace_id"])
	assert.NotContains(t, decodeLine(t, lines[1]), "trace_id")
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		warnSeen  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warning", false, true},
		{"error", false, false},
		{"bogus", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(config.LoggingConfig{Level: tt.level}, &buf)

			logger.Debug("debug line")
			logger.Warn("warn line")

			assert.Equal(t, tt.debugSeen, strings.Contains(buf.String(), "debug line"))
			assert.Equal(t, tt.warnSeen, strings.Contains(buf.String(), "warn line"))
		})
	}
}

func TestNewLogger_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(config.LoggingConfig{Level: "info", Format: "text"}, &buf)
	logger.Info("plain", "k", "v")

	assert.Contains(t, buf.String(), "msg=plain")
	assert.Contains(t, buf.String(), "k=v")
}

func TestContextHelpers(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))

	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.Len(t, traceID, 36)

	// existing trace IDs are preserved
	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)))
	assert.NotEqual(t, traceID, GenerateTraceID())
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	WithComponent(logger, "aggregation").Info("component line")
	entry := decodeLine(t, bytes.TrimSpace(buf.Bytes()))
	assert.Equal(t, "aggregation", entry["component"])

	buf.Reset()
	WithError(logger, errors.New("boom")).Info("error line")
	entry = decodeLine(t, bytes.TrimSpace(buf.Bytes()))
	assert.Equal(t, "boom", entry["error"])

	assert.Same(t, logger, WithError(logger, nil))

	buf.Reset()
	WithCorpus(WithStep(logger, "wrangle"), 5, "Combined_News_DJIA.csv").Info("corpus line")
	entry = decodeLine(t, bytes.TrimSpace(buf.Bytes()))
	assert.Equal(t, "wrangle", entry["step"])
	assert.Equal(t, float64(5), entry["corpus"])
	assert.Equal(t, "Combined_News_DJIA.csv", entry["source"])
}
