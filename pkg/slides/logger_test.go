package slides

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		expected    []string
		notExpected []string
	}{
		{
			name:     "debug level shows all messages",
			level:    "debug",
			expected: []string{"DEBUG", "debug message", "INFO", "WARN", "ERROR"},
		},
		{
			name:        "warn level hides debug and info",
			level:       "warn",
			expected:    []string{"WARN", "warn message", "ERROR"},
			notExpected: []string{"debug message", "info message"},
		},
		{
			name:        "off disables output",
			level:       "off",
			notExpected: []string{"debug message", "info message", "warn message", "error message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := NewLogger(tt.level, &buf)
			require.NoError(t, err)

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message", zap.Int("row", 3))
			logger.Error("error message")

			out := buf.String()
			for _, s := range tt.expected {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notExpected {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestNewLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("info", &buf)
	require.NoError(t, err)

	logger.With(zap.String("job_id", "J1")).Info("document rendered", zap.Int("rows", 2))
	assert.Contains(t, buf.String(), `"job_id": "J1"`)
	assert.Contains(t, buf.String(), `"rows": 2`)
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger("chatty", nil)
	assert.Error(t, err)
}
