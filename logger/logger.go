// Package logger is the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var current atomic.Pointer[log.Logger]

func init() {
	current.Store(newLogger(os.Stderr, log.InfoLevel))
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

// Init replaces the global logger. An unknown level falls back to info.
func Init(w io.Writer, level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	current.Store(newLogger(w, lvl))
}

func Debug(message string, keyvals ...any) { current.Load().Debug(message, keyvals...) }
func Info(message string, keyvals ...any)  { current.Load().Info(message, keyvals...) }
func Warn(message string, keyvals ...any)  { current.Load().Warn(message, keyvals...) }
func Error(message string, keyvals ...any) { current.Load().Error(message, keyvals...) }

// Fatal logs at FATAL level and terminates the program.
func Fatal(message string, keyvals ...any) { current.Load().Fatal(message, keyvals...) }
