// Package ftxlog is the structured application logger for cmd/ftex,
// grounded on
// package-register-trpc-agent-go-extensions/logger: it wraps
// charmbracelet/log as a package-level singleton built by Init, with New
// available for callers that want an independent logger (e.g. per-test,
// or a second sink for watch-mode UI output).
package ftxlog

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the shared structured-logging handle.
type Logger = *log.Logger

var global Logger

// Init builds the package-level logger at the given level ("debug", "info",
// "warn", "error"; unrecognized values fall back to "info") and installs it
// as the value L returns.
func Init(level string) {
	global = New(os.Stderr, level)
}

// L returns the package-level logger, lazily defaulting to an info-level
// logger on stderr if Init was never called.
func L() Logger {
	if global == nil {
		global = New(os.Stderr, "info")
	}
	return global
}

// New builds a standalone logger writing to w at the given level. Timestamps
// are enabled by default; callers that redirect to a non-interactive sink
// (e.g. a log file consumed by another tool) can disable them via
// logger.SetReportTimestamp(false) on the returned value.
func New(w io.Writer, level string) Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
	})
	logger.SetLevel(parseLevel(level))
	return logger
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
