package logger

import (
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// NewPretty returns an *slog.Logger backed by the charmbracelet/log handler
// for colorized, human-friendly CLI output. Core packages keep taking
// *zap.Logger; this is for command-level progress reporting only.
func NewPretty(debug bool) *slog.Logger {
	return NewPrettyWithWriter(debug, os.Stderr)
}

// NewPrettyWithWriter is NewPretty with an explicit output writer, used by
// command tests to capture output.
func NewPrettyWithWriter(debug bool, w io.Writer) *slog.Logger {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level,
		ReportTimestamp: true,
	})

	return slog.New(handler)
}
