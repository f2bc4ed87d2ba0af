// Package logger builds prefixed charmbracelet/log loggers for long-lived components.
// Loggers write to stderr: stdout belongs to the IPC channel.
package logger

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New creates a prefixed logger that follows the global log level.
func New(prefix string) *log.Logger {
	return NewWithWriter(os.Stderr, prefix)
}

// NewWithWriter is New with an explicit destination, mostly for tests.
func NewWithWriter(w io.Writer, prefix string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportCaller:    false,
		ReportTimestamp: true,
		Formatter:       log.TextFormatter,
		Level:           log.GetLevel(),
	})
}

// SetLevel parses a level name ("debug", "info", "warn", "error") and applies it
// to the default logger. Unknown names leave the level untouched.
func SetLevel(name string) bool {
	if name == "" {
		return false
	}
	lvl, err := log.ParseLevel(name)
	if err != nil {
		log.Warnf("Unknown log level %q, keeping %s", name, log.GetLevel())
		return false
	}
	log.SetLevel(lvl)
	return true
}
