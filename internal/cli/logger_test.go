package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/logging"
)

// TestLoggerServiceLevel tests effective level resolution
func TestLoggerServiceLevel(t *testing.T) {
	testCases := []struct {
		name      string
		config    logging.LogConfig
		expected  logrus.Level
		expectErr bool
	}{
		{
			name:     "TextualLevel",
			config:   logging.LogConfig{LogLevel: "warn"},
			expected: logrus.WarnLevel,
		},
		{
			name:     "SingleVerboseMapsToDebug",
			config:   logging.LogConfig{LogLevel: "info", Verbose: 1},
			expected: logrus.DebugLevel,
		},
		{
			name:     "DoubleVerboseMapsToTrace",
			config:   logging.LogConfig{LogLevel: "info", Verbose: 2},
			expected: logrus.TraceLevel,
		},
		{
			name:     "DebugFlagRaisesLevel",
			config:   logging.LogConfig{LogLevel: "info", Debug: logging.DebugFlags{Git: true}},
			expected: logrus.DebugLevel,
		},
		{
			name:     "DebugFlagKeepsTrace",
			config:   logging.LogConfig{LogLevel: "trace", Debug: logging.DebugFlags{API: true}},
			expected: logrus.TraceLevel,
		},
		{
			name:      "InvalidLevel",
			config:    logging.LogConfig{LogLevel: "noisy"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := tc.config
			level, err := NewLoggerService(&cfg).Level()
			if tc.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid log level")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, level)
		})
	}
}

// TestLoggerServiceConfigureJSON tests JSON formatting with correlation IDs
func TestLoggerServiceConfigureJSON(t *testing.T) {
	cfg := &logging.LogConfig{LogLevel: "info", LogFormat: "json", CorrelationID: "abc123"}

	logger := logrus.New()
	require.NoError(t, NewLoggerService(cfg).Configure(logger))

	var buf bytes.Buffer
	logger.SetOutput(&buf)

	logger.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "abc123", entry[logging.StandardFields.CorrelationID])
}

// TestLoggerServiceConfigureText tests the default text formatter
func TestLoggerServiceConfigureText(t *testing.T) {
	cfg := &logging.LogConfig{LogLevel: "debug", LogFormat: "text"}

	logger := logrus.New()
	require.NoError(t, NewLoggerService(cfg).Configure(logger))

	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}

// TestDebugFlagsAny tests the aggregate debug flag check
func TestDebugFlagsAny(t *testing.T) {
	assert.False(t, logging.DebugFlags{}.Any())
	assert.True(t, logging.DebugFlags{Git: true}.Any())
	assert.True(t, logging.DebugFlags{Pagination: true}.Any())
}

// TestLogConfigCorrelation tests that each invocation gets a fresh ID
func TestLogConfigCorrelation(t *testing.T) {
	flags := defaultFlags()

	first := flags.logConfig()
	second := flags.logConfig()

	assert.NotEmpty(t, first.CorrelationID)
	assert.NotEmpty(t, second.CorrelationID)
	assert.NotEqual(t, first.CorrelationID, second.CorrelationID)
}
