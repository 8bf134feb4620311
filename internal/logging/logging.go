// Package logging builds the structured loggers shared by services.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// New creates a logger with timestamp formatting that writes to w and
// filters messages below level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// FromConfig creates a stderr logger for a level name such as "debug" or
// "warn". Unknown names fall back to info.
func FromConfig(levelName string) *log.Logger {
	level, err := log.ParseLevel(strings.ToLower(levelName))
	if err != nil {
		level = log.InfoLevel
	}
	return New(os.Stderr, level)
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return New(io.Discard, log.FatalLevel)
}

// Or returns l, or a discarding logger when l is nil.
func Or(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
