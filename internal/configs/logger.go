package config

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// NewLogger builds the process logger. Unknown levels fall back to info and
// unknown formats to text.
func NewLogger(w io.Writer, level, format string) *log.Logger {
	lvl, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Formatter:       parseFormatter(format),
		ReportTimestamp: true,
		Prefix:          "todo",
	})
}

func parseFormatter(format string) log.Formatter {
	switch strings.ToLower(format) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
