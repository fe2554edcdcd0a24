// Package ltclog is a thin façade over github.com/charmbracelet/log
// shared by engine, audiohost, and cmd/ltcgen, so startup/shutdown/error
// lines look the same regardless of which package emits them.
package ltclog

import (
	"os"

	"github.com/charmbracelet/log"
)

// New returns a logger writing to stderr with the given verbosity.
// verbosity follows the CLI's repeated -v convention: 0 is Info, 1 is
// Debug, 2+ is also Debug (there is no more verbose level to fall back
// to, matching charmbracelet/log's level set).
func New(verbosity int) *log.Logger {
	level := log.InfoLevel
	if verbosity > 0 {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return logger
}

// WithComponent returns a child logger tagging every line with the
// given component name, e.g. ltclog.WithComponent(logger, "engine").
func WithComponent(logger *log.Logger, name string) *log.Logger {
	return logger.With("component", name)
}
