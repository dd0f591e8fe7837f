package cli

import (
	"github.com/microsoft/vscode-pull-request-github-sub005/internal/logging"
)

// Flags contains all global flags for the CLI
type Flags struct {
	ConfigFile string
	Host       string
	LogLevel   string
	LogFormat  string
	Verbose    int
	Debug      logging.DebugFlags
}

// defaultFlags returns the flag defaults shared by every root instance.
func defaultFlags() *Flags {
	return &Flags{
		ConfigFile: "prsync.yaml",
		Host:       "github.com",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// logConfig builds the logging configuration for one invocation, stamped
// with a fresh correlation ID.
func (f *Flags) logConfig() *logging.LogConfig {
	cfg := &logging.LogConfig{
		ConfigFile: f.ConfigFile,
		LogLevel:   f.LogLevel,
		Verbose:    f.Verbose,
		Debug:      f.Debug,
		LogFormat:  f.LogFormat,
	}

	return cfg.WithCorrelationID(logging.GenerateCorrelationID())
}
