package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/microsoft/vscode-pull-request-github-sub005/internal/logging"
)

// LoggerService applies a logging configuration to a logrus logger.
//
// Verbose flags map onto log levels (-v debug, -vv trace) and override
// the textual --log-level setting. Component debug flags raise the level
// to at least debug so their targeted output becomes visible.
type LoggerService struct {
	config *logging.LogConfig
}

// NewLoggerService creates a new logger service with the given configuration.
func NewLoggerService(config *logging.LogConfig) *LoggerService {
	return &LoggerService{config: config}
}

// Level resolves the effective log level from the configuration.
func (s *LoggerService) Level() (logrus.Level, error) {
	switch {
	case s.config.Verbose >= 2:
		return logrus.TraceLevel, nil
	case s.config.Verbose == 1:
		return logrus.DebugLevel, nil
	}

	level, err := logrus.ParseLevel(strings.ToLower(s.config.LogLevel))
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log level %q: %w", s.config.LogLevel, err)
	}

	if s.config.Debug.Any() && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}

	return level, nil
}

// Configure applies the configuration to the given logger. Every entry is
// tagged with the run's correlation ID so log lines from one invocation
// can be grouped.
func (s *LoggerService) Configure(logger *logrus.Logger) error {
	level, err := s.Level()
	if err != nil {
		return err
	}

	logger.SetLevel(level)

	if s.config.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors:    false,
			FullTimestamp:    true,
			TimestampFormat:  "15:04:05",
			PadLevelText:     true,
			QuoteEmptyFields: true,
		})
	}

	// Log to stderr to keep stdout clean for output
	logger.SetOutput(os.Stderr)

	if s.config.CorrelationID != "" {
		logger.AddHook(&correlationHook{id: s.config.CorrelationID})
	}

	return nil
}

// correlationHook stamps every entry with the invocation's correlation ID.
type correlationHook struct {
	id string
}

func (h *correlationHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *correlationHook) Fire(entry *logrus.Entry) error {
	entry.Data[logging.StandardFields.CorrelationID] = h.id
	return nil
}
