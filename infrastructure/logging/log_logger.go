package logging

import (
	"log"

	"tunio/application/logging"
)

// LogLogger writes through the standard library logger.
type LogLogger struct {
	prefix string
}

func NewLogLogger() logging.Logger {
	return &LogLogger{}
}

// NewPrefixedLogLogger tags every line, e.g. with the interface name.
func NewPrefixedLogLogger(prefix string) logging.Logger {
	return &LogLogger{prefix: prefix + ": "}
}

func (l *LogLogger) Printf(format string, v ...any) {
	log.Printf(l.prefix+format, v...)
}

// NoopLogger discards everything. Useful on hot paths and in tests.
type NoopLogger struct{}

func NewNoopLogger() logging.Logger { return &NoopLogger{} }

func (NoopLogger) Printf(string, ...any) {}
