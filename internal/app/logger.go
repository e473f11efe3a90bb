// Package app holds cross-layer application plumbing.
package app

import (
	"fmt"
	"io"
	"os"
)

// Logger is the leveled logging interface the pipeline layers depend on.
// The CLI installs its configured logger at startup; until then a plain
// stderr logger is used.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// stderrLogger writes everything to stderr without level filtering.
type stderrLogger struct {
	output io.Writer
}

func (l *stderrLogger) Debug(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "DEBUG: "+format+"\n", args...)
}

func (l *stderrLogger) Info(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "INFO: "+format+"\n", args...)
}

func (l *stderrLogger) Warn(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "WARN: "+format+"\n", args...)
}

func (l *stderrLogger) Error(format string, args ...interface{}) {
	fmt.Fprintf(l.output, "ERROR: "+format+"\n", args...)
}

var globalLogger Logger = &stderrLogger{output: os.Stderr}

// SetLogger installs the process-wide logger.
func SetLogger(logger Logger) {
	if logger != nil {
		globalLogger = logger
	}
}

// GetLogger returns the current logger.
func GetLogger() Logger {
	return globalLogger
}
